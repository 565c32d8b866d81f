package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/swaptest/assert"
)

func TestLoadConfig(t *testing.T) {
	home := t.TempDir()

	conf, err := LoadConfig(home)
	assert.Nil(t, err)
	assert.Equal(t, DefaultConfig(home), conf)

	conf.LogLevel = "debug"
	conf.Genesis = "/tmp/other.json"
	assert.Nil(t, conf.Save())

	loaded, err := LoadConfig(home)
	assert.Nil(t, err)
	assert.Equal(t, conf, loaded)
	assert.Equal(t, filepath.Join(home, "data", "swap.db"), loaded.dbPath())
}

func TestLoadConfigErrors(t *testing.T) {
	cases := map[string]struct {
		content string
		wantErr *errors.Error
	}{
		"unknown log level": {
			content: "log_level: verbose\n",
			wantErr: errors.ErrInvalidInput,
		},
		"not yaml": {
			content: "log_level: [\n",
			wantErr: errors.ErrInvalidInput,
		},
		"home defaults to the directory": {
			content: "log_level: error\n",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			home := t.TempDir()
			if err := ioutil.WriteFile(filepath.Join(home, configFile), []byte(tc.content), 0o600); err != nil {
				t.Fatalf("write config: %s", err)
			}
			conf, err := LoadConfig(home)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, home, conf.Home)
				assert.Equal(t, "error", conf.LogLevel)
			}
		})
	}
}
