// Package scenario runs YAML-described operation sequences against a fresh
// inventory manager.
//
// # Scenario Format
//
//	name: distribute_two
//	description: "Two recipients get the two oldest items"
//	steps:
//	  - op: add
//	    freshness: 8
//	  - op: add
//	    freshness: 5
//	  - op: distribute
//	    recipients: [User1, User2]
//	    expect:
//	      count: 2
//	      recipients: [User1, User2]
//	      freshness: [8, 5]
//	  - op: stats
//	    expect: { total: 0, average: 0 }
//	assertions:
//	  - type: log_order
//	    actions: [ADD, ADD, DISTRIBUTE]
//	  - type: log_verified
//
// Supported ops: add, remove, distribute, sort, remove_spoiled, stats, items.
//
// An expect block may only name fields the op produces. error applies to
// every op; otherwise:
//
//	add             id, freshness
//	remove          count (items left)
//	distribute      count, recipients, freshness
//	sort, items     count, freshness
//	remove_spoiled  count, freshness
//	stats           total, average
//
// # Assertion Types
//
//   - log_order: the given action types appear in the log in this relative order
//   - log_count: an action type appears exactly Count times
//   - final_items: the final inventory freshness values, in order
//   - log_verified: the log hash chain verifies
//
// Every run uses its own Manager, so scenarios are isolated and their logs
// are deterministic. AssertGolden compares a run's log against
// testdata/golden/<name>.golden.
package scenario
