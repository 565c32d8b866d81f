/*
Package x contains the helpers shared by all extensions.

Extensions implement a piece of the ledger functionality (models, Handlers,
Initializers) and are combined together by the app package. Authentication
and serialization helpers live here so that every extension uses the same
vocabulary.
*/
package x
