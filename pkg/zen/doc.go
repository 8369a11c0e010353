// Package zen provides types, interfaces, and helpers for working with a
// ZenML-style metadata store over REST.
//
// # Overview
//
// The zen package defines the entity types (Stack, Component, Flavor, User,
// Team, Role, Project, Repository, Pipeline, PipelineRun, StepRun, Artifact)
// and the interfaces of the per-resource clients. The REST implementation
// of Store is built by the zenclient package, which wires URL validation,
// transport, and session handling:
//
//	store, err := zenclient.New(ctx, &zen.Config{
//	  URL:      "https://zen.example.com",
//	  Username: "default",
//	  Password: "secret",
//	})
//	if err != nil { log.Fatal(err) }
//
//	stacks, err := store.Stacks().List(ctx, &zen.StackFilter{Name: "default"})
//
// # Sessions
//
// A store logs in lazily with the configured credentials and caches the
// bearer token. When the server answers 401 the token is dropped, a fresh
// one is obtained and the request is re-issued once. Tokens can be shared
// across processes through a Cache (MemoryCache or NATSKVCache).
//
// # Errors
//
// Every failed operation returns an *Error carrying an ErrorCode. Codes form
// families: a StackExists error also matches ErrEntityExists and ErrConflict,
// and a DoesNotExist error matches ErrNotFound:
//
//	_, err := store.Stacks().Create(ctx, stack)
//	if errors.Is(err, zen.ErrEntityExists) { ... }
//
// # Filters
//
// List calls take a filter struct whose set fields are exact-match, AND
// combined constraints. A nil filter lists everything.
package zen
