/*
Package ports defines the driven-side interfaces the runtime depends on:
the external completion service (CompletionClient) and audit persistence
(RunStore). Adapters under pkg/adapters provide concrete implementations;
the core never imports an adapter.
*/
package ports
