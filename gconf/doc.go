/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension stores a single configuration object under the "_c:<pkg>"
key. The object is loaded from the "conf" section of the genesis file
with InitConfig and can later be changed by its owner with the
UpdateConfigurationHandler.
*/
package gconf
