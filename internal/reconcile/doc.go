// Package reconcile converges a single named external resource onto its
// desired state.
//
// An [Operation] bundles a read-only probe with create and delete calls for
// one resource. The reconciler derives a [Decision] purely from whether the
// resource exists and whether the caller asked to replace it:
//
//	exists  replace  decision
//	no      any      Create     create once
//	yes     no       Skip       no mutating call, the resource is trusted as is
//	yes     yes      Recreate   delete once, then create once
//
// There is no rollback. A failed create after a successful delete leaves
// the resource absent and is reported with [StageCreateAfterDelete].
package reconcile
