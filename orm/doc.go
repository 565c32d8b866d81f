/*
Package orm provides an easy to use db wrapper on top of a KVStore.

Every model is stored in a bucket. A bucket prefixes all keys with its name,
so that many buckets can share one store without collisions. Models must
implement Model: they can be validated and serialized. Secondary indexes are
maintained by the bucket on every write and allow to find all models sharing
an indexed value without scanning the whole bucket.
*/
package orm
