package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "valid", password: "Str0ngPass", wantErr: nil},
		{name: "valid unicode", password: "Пароль1abc", wantErr: nil},
		{name: "too short", password: "Ab1", wantErr: ErrPasswordTooShort},
		{name: "exactly eight", password: "Abcdef12", wantErr: nil},
		{name: "too long", password: "A1" + strings.Repeat("a", 71), wantErr: ErrPasswordTooLong},
		{name: "exactly 72 bytes", password: "A1" + strings.Repeat("a", 70), wantErr: nil},
		{name: "no upper", password: "lowercase1", wantErr: ErrPasswordNoUpper},
		{name: "no lower", password: "UPPERCASE1", wantErr: ErrPasswordNoLower},
		{name: "no digit", password: "NoDigitsHere", wantErr: ErrPasswordNoDigit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
