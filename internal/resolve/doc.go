// Package resolve drives a repository with an in-progress merge to a merge commit.
//
// A session inspects porcelain status, removes paths deleted on the local side,
// re-adds paths renamed upstream onto locally deleted locations, and then asks the
// operator to resolve whatever remains before committing with the session's message.
package resolve
