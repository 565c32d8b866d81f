/*
Package escrow implements bilateral asset exchange escrows.

A maker locks offered assets in one or more custody vaults and declares
the assets expected in return. A taker claims the vault content by paying
the expected assets to the maker. The maker can refund whatever is left.

Four kinds of escrow share the same lifecycle:

	FullFill     one offered asset, released entirely for a fixed payment
	PartialFill  one offered asset, released in parts for a per unit price
	MultiAsset   bundles of offered and expected assets settled at once
	TimeBoxed    like FullFill but can only be taken before a deadline and
	             refunded after it

Vaults are custody accounts owned by an authority derived from the maker
address and a maker chosen seed. No private key exists for that authority,
so funds can leave a vault only through this package.

Every operation runs in an isolated cache of the store. Nothing is written
unless all transfers succeed.
*/
package escrow
