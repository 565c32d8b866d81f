/*
Package custody implements the asset custodian: a registry of mints
(asset tickers and their decimal scale), custody accounts holding a
single asset each and native reserves used to pay account storage
deposits.

Every account is associated with an (owner, ticker) pair and lives at a
deterministic address. Funds can leave an account only when presented
with an Authority that authorizes the account owner. Signed messages
provide one through Signers, escrow vaults through an authority.Proof.

The Executor wraps the controller with checked operations that always
declare the asset decimal scale. It is the only API other extensions
should use to move balances.
*/
package custody
