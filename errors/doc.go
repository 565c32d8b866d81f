/*
Package errors implements custom error interfaces for the swap protocol.

The idea is to reuse as many errors from this package as possible and define
custom package errors only when absolutely necessary. Every root error has a
unique code, allowing clients to distinguish failures and act accordingly.

Register a root error with Register(code, description). Create runtime errors
by wrapping one of the root errors:

	errors.Wrap(errors.ErrNotFound, "escrow")
	errors.Wrapf(errors.ErrInvalidAmount, "amount %d", amount)

Test for an error kind with the Is method of the root error:

	if errors.ErrNotFound.Is(err) { ... }

The innermost wrap attaches a stack trace. Once you have an error you can use
fmt to get more context:

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
