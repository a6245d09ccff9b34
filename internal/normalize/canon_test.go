package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "ディズニー・オン・アイス", "ディズニー・オン・アイス"},
		{"fullwidth digits fold", "ライブ２０２５", "ライブ2025"},
		{"fullwidth ascii fold", "ＡＢＣフェスタ", "ABCフェスタ"},
		{"ideographic space collapses", "夏の　　展示", "夏の 展示"},
		{"whitespace runs collapse", "  a \t b\n c  ", "a b c"},
		{"curly quotes unify", "“祭り” ‘夜’", `"祭り" '夜'`},
		{"cjk corner quotes unify", "〝特別〞公演", `"特別"公演`},
		{"dashes unify", "東京–大阪—福岡", "東京-大阪-福岡"},
		{"wave dash folds", "10:00〜18:00", "10:00~18:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.in))
		})
	}
}

func TestCanonicalize_WidthVariantsAgree(t *testing.T) {
	// Full-width and half-width renditions of the same title must
	// canonicalize identically, since they feed the dedup key.
	assert.Equal(t, Canonicalize("ＬＩＶＥ　２０２５"), Canonicalize("LIVE 2025"))
}
