package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsernameValidator(t *testing.T) {
	require.NoError(t, UsernameValidator("alice"))
	require.NoError(t, UsernameValidator("alice.b+test@home_1"))

	require.ErrorIs(t, UsernameValidator(""), ErrUsernameEmpty)
	require.ErrorIs(t, UsernameValidator(strings.Repeat("a", 151)), ErrUsernameTooLong)
	require.ErrorIs(t, UsernameValidator("no spaces"), ErrUsernameInvalid)
	require.ErrorIs(t, UsernameValidator("semi;colon"), ErrUsernameInvalid)
}

func TestPasswordValidator(t *testing.T) {
	require.NoError(t, PasswordValidator("pw12345"))

	require.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	require.ErrorIs(t, PasswordValidator("short"), ErrPasswordTooShort)
	require.ErrorIs(t, PasswordValidator(strings.Repeat("x", 256)), ErrPasswordTooLong)
}

func TestEmailValidator(t *testing.T) {
	require.NoError(t, EmailValidator("a@x.com"))

	require.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	require.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
}
