/*
Package swaptest provides mocks and helpers for testing code that is
built on top of the swap ledger: authenticators, handlers, decorators and
random signer conditions.
*/
package swaptest
