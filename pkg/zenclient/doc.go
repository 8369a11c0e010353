// Package zenclient provides the entry point for constructing a REST metadata
// store that implements the zen.Store interface.
//
// It validates the server URL, picks the session strategy from the configured
// credentials and, on request, checks connectivity and server version before
// returning the store.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/zenml-client/pkg/zen"
//	  "github.com/fivetwenty-io/zenml-client/pkg/zenclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  store, err := zenclient.New(ctx, &zen.Config{
//	    URL:      "https://zenml.example.com",
//	    Username: "default",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  stacks, err := store.Stacks().List(ctx, &zen.StackFilter{Name: "default"})
//	  if err != nil { log.Fatal(err) }
//	  _ = stacks
//	}
//
// # Compatibility checks
//
// Set Config.VerifyOnConnect to fail fast on bad credentials, and
// Config.ServerVersionConstraint (for example ">=0.20.0, <0.30.0") to refuse
// servers outside a supported range.
//
// # Helpers
//
// NewWithToken and NewWithPassword wrap New with the matching configuration.
package zenclient
