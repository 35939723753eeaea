// Package async provides utilities for parallel task execution with
// error collection.
//
// [RunParallel] executes independent operations concurrently, lets every
// one of them finish, and returns all failures joined. It is used for
// workload cleanup where one failed delete must not hide the others.
package async
