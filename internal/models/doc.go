// Package models defines the core domain models for Munim.
//
// # Current Models
//
// The following models make up the ledger pipeline:
//   - Party: a counterparty (manufacturer/supplier) whose bills and payments are tracked
//   - LedgerEntry: a single dated row in a party's ledger or the day book
//   - ParsedEntry: the typed result of parsing one line of shorthand input
//   - Date: a civil calendar date with no time component
//
// # Design Principles
//
// 1. **Derived state is labeled**: Party.Balance and LedgerEntry.RunningBalance
//    are caches rewritten by recalculation, never edited directly
// 2. **Amounts are always positive**: the signed effect on a balance comes from
//    EntryKind, never from a negative amount
// 3. **Avoid circular references**: models reference each other by ID strings
package models
