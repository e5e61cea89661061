package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompterPipedInput(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{In: strings.NewReader("a@b.com\npw\npw"), Out: &out}

	email, err := p.ReadLine("Email: ")
	require.NoError(t, err)
	pass, err := p.ReadPassword("Password: ")
	require.NoError(t, err)
	confirm, err := p.ReadPassword("Confirm password: ")
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", email)
	assert.Equal(t, "pw", pass)
	assert.Equal(t, "pw", confirm)
	assert.Equal(t, "Email: Password: Confirm password: ", out.String())
}

func TestPrompterEOF(t *testing.T) {
	p := &Prompter{In: strings.NewReader(""), Out: &bytes.Buffer{}}
	_, err := p.ReadLine("Name: ")
	assert.Error(t, err)
}

func TestPrompterNoInput(t *testing.T) {
	p := &Prompter{Out: &bytes.Buffer{}}
	_, err := p.ReadPassword("Password: ")
	assert.ErrorIs(t, err, ErrNotTerminal)
}
