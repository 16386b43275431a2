/*
Package ledger implements the balance mutation engine.

Every settlement flow runs exactly one Engine.Settle scope. Inside the
scope, Ops exposes the four primitive operations:

  - Debit: decrement a balance, failing if funds are insufficient
  - Credit: increment a balance
  - RecordPurchase: append an immutable purchase row with a snapshotted total
  - RecordTransaction: append an immutable signed history row

The scope maps onto one database transaction, so either every call inside
it commits or none do: a debited balance without its history row is
structurally impossible. Debit and Credit re-read the account row with a
row-level lock, which serializes concurrent settlements of the same
account at the storage layer and rules out lost updates on the balance.

Domain failures (insufficient funds, unknown account, invalid amount)
propagate to the caller unchanged; any other failure inside the scope
rolls the transaction back and surfaces as ErrTransactionFailed.
*/
package ledger
