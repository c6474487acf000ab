package german

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectAllAndNoneKeywords(t *testing.T) {
	_, all := SelectAllKeywords["beide"]
	assert.True(t, all)
	_, none := SelectNoneKeywords["nichts"]
	assert.True(t, none)
}

func TestOrdinalWordsCoversLast(t *testing.T) {
	assert.Equal(t, 1, OrdinalWords["erste"])
	assert.Equal(t, -1, OrdinalWords["letzte"])
}
