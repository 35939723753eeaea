// Package orchestration provides high-level workflow coordination for the
// local cluster lifecycle.
//
// # Workflow
//
// Orchestrator.Run executes the following phases in order:
//  1. Validation - configuration and topology checks
//  2. Check cluster - is the kind cluster present
//  3. Check network - is the docker network present, then a summary
//  4. Replace cluster - delete the existing cluster when replacing
//  5. Network - reuse, create, or recreate the docker network
//  6. Cluster - create the kind cluster unless it is reused
//  7. Bootstrap - run the bootstrap plan step by step
//  8. Storage - ensure the repository volume and claim
//
// Nothing is changed before both checks have completed. Every failure is
// returned as an *Error whose Stage selects the process exit code.
//
// # Usage
//
//	orch := orchestration.New(cfg, networks, clusters, exec, kubeFactory)
//	if err := orch.Run(ctx, replace); err != nil {
//	    os.Exit(orchestration.ExitCode(err))
//	}
//
// Teardown removes the cluster and, optionally, its network.
package orchestration
