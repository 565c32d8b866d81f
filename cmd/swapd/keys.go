package main

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/crypto"
	"github.com/iov-one/swap/errors"
)

var isKeyName = regexp.MustCompile(`^[a-zA-Z0-9_\-]{1,32}$`).MatchString

// saveKey writes a hex encoded private key file. An existing key is never
// overwritten.
func saveKey(path string, key *crypto.PrivateKey) error {
	raw, err := key.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(errors.ErrDuplicate, "key file %s", path)
		}
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer fd.Close()
	if _, err := fd.WriteString(hex.EncodeToString(raw) + "\n"); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// loadKey reads a key file written by saveKey.
func loadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "key file %s", path)
		}
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	bin, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "key file is not hex encoded")
	}
	var key crypto.PrivateKey
	if err := key.Unmarshal(bin); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "cannot decode key")
	}
	return &key, nil
}

// resolveAddress accepts a key name or an address in any format understood by
// swap.ParseAddress.
func resolveAddress(conf Config, ref string) (swap.Address, error) {
	if isKeyName(ref) {
		if key, err := loadKey(conf.keyPath(ref)); err == nil {
			return key.PublicKey().Address(), nil
		} else if !errors.ErrNotFound.Is(err) {
			return nil, err
		}
	}
	addr, err := swap.ParseAddress(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "address %q", ref)
	}
	if addr == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "address")
	}
	return addr, nil
}
