// Package dispatcher routes key presses through the rule engine and resolves
// the resulting intents into tree commands and cursor placement.
//
// Each key event is processed synchronously to completion: rule evaluation,
// intent resolution, command dispatch, then cursor placement. PerformStructural
// is the only call path that mutates structure and places the cursor for a
// user action, preserving the "exactly one transaction, exactly one cursor
// placement" guarantee.
package dispatcher
