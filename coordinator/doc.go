// Package coordinator projects off-chain catalog state onto the ledger
// exactly once.
//
// Three coordinators cover the flow, invoked strictly in sequence by the
// caller: EventRegistrar creates the on-chain event, TierRegistrar registers
// each active pricing tier with per-tier failure isolation, and ArchivalMinter
// mints the permanently-reserved archival record. Each coordinator re-reads
// the registry store before doing any ledger work, so the sequence is
// re-runnable from any point after a crash without double-registering.
//
// Every ledger interaction follows the same discipline: simulate the call,
// broadcast it, wait for confirmation, and only then write the mirror row.
// A rejected simulation or a reverted transaction therefore leaves both
// stores untouched. The one state the coordinators cannot repair is a store
// write failing after the ledger has confirmed; that divergence is logged at
// error severity and surfaced as ErrStoreWriteAfterConfirm for manual
// reconciliation.
package coordinator
