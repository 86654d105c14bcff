// Package models defines the core domain models for GroupTab.
//
// # Model Overview
//
//   - Tab: a shared ledger for one group activity (a single bill or a trip)
//   - Participant: one person's membership in a Tab (organizer, member, or guest)
//   - Expense: a single outlay paid by one participant on behalf of the tab
//   - Payment: a direct transfer between two participants, offsetting balances
//   - User: a registered account; guests participate without one
//
// # Identity
//
// A Participant carries exactly one of two identities: a registered user
// reference (UserID) or a guest identity (GuestName plus a magic-link Token).
// The token is the sole credential for re-identifying a guest; it is minted
// from a cryptographically secure random source and is unique store-wide.
//
// # Money
//
// All amounts are integers in minor currency units (cents). Floating point
// appears only inside the balance calculator, where the fair share is a
// real-valued division; nothing float-typed leaves the service boundary.
//
// # Design Principles
//
//  1. No pointers between models: relationships use ID strings
//  2. Expenses and Payments are immutable once created
//  3. A Tab is mutated only by status transitions, never deleted
package models
