// Package flow implements the step navigation and validation state machine
// of an intake session.
//
// A Session moves through the phases step, follow-up, consent and submitted.
// Advance validates the current step, opens a follow-up when its trigger
// rule matches, and otherwise commits a snapshot of the form state through a
// Committer before moving to the next reachable step. Steps whose ShowWhen
// condition does not hold are skipped in both directions and ignored by
// validation. Back never validates or commits. On the consent step Advance
// requires the consent flag, re-validates every reachable step and performs
// the final commit; a failed final commit keeps the session on the consent
// step so it can be retried.
//
// Transitions are guarded by an in-flight flag rather than a queue: Advance,
// ResolveFollowUp, Back or Resume while a commit is running returns ErrBusy
// and never reaches the backend.
package flow
