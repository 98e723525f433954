package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNew(t *testing.T) {
	t.Run("requires a user id", func(t *testing.T) {
		_, err := New("  ", nil)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("nil profile source reads empty", func(t *testing.T) {
		sess, err := New("user-1", nil)
		require.NoError(t, err)
		assert.Equal(t, "user-1", sess.UserID())
		assert.Equal(t, Profile{}, sess.Profile())
		assert.False(t, sess.UpdateProfile(Profile{Sex: SexMale}))
	})

	t.Run("anonymous sessions get a uuid", func(t *testing.T) {
		sess := NewAnonymous(nil)
		_, err := uuid.Parse(sess.UserID())
		assert.NoError(t, err)
	})
}

func TestProfileIsReadAtCallTime(t *testing.T) {
	src := NewStaticProfile(Profile{Age: intPtr(30), Sex: SexFemale})
	sess, err := New("user-1", src)
	require.NoError(t, err)

	assert.Equal(t, 30, *sess.Profile().Age)

	require.True(t, sess.UpdateProfile(Profile{Age: intPtr(41), Sex: SexMale}))
	assert.Equal(t, 41, *sess.Profile().Age)
	assert.Equal(t, SexMale, sess.Profile().Sex)
	assert.Equal(t, "user-1", sess.UserID())
}

func TestParseSex(t *testing.T) {
	tests := []struct {
		input   string
		want    Sex
		wantErr bool
	}{
		{"", SexUnset, false},
		{"male", SexMale, false},
		{" Female ", SexFemale, false},
		{"other", SexUnset, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParseSex(test.input)
			if test.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSex)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestValidateAge(t *testing.T) {
	assert.NoError(t, ValidateAge(18))
	assert.NoError(t, ValidateAge(75))
	assert.ErrorIs(t, ValidateAge(17), ErrUnderage)
	assert.ErrorIs(t, ValidateAge(0), ErrInvalidAge)

	assert.NoError(t, Profile{}.Validate())
	assert.ErrorIs(t, Profile{Age: intPtr(12)}.Validate(), ErrUnderage)
	assert.ErrorIs(t, Profile{Sex: "x"}.Validate(), ErrInvalidSex)
}
