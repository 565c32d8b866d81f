/*
Package swap defines the common vocabulary shared by all the packages of the
escrow swap protocol: addresses and the conditions they are derived from,
key value store interfaces, message and handler interfaces, and the context
helpers carrying the block height, the clock and the logger.

The protocol itself lives in the x/ packages. x/custody emulates the asset
custodian that holds balances, x/escrow implements the escrow lifecycle on
top of it. The app package provides the host ledger that runs every operation
as an indivisible unit.

We pass context through context.Context between the ledger and handlers. For
every value XYZ of type T stored in the context there are two functions:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level code
overwriting the value (eg. height, block time).
*/
package swap
