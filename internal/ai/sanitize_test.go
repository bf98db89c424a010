package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONPlainArray(t *testing.T) {
	assert.Equal(t, `[{"kind":"tf"}]`, ExtractJSON(`[{"kind":"tf"}]`))
}

func TestExtractJSONFencedBlock(t *testing.T) {
	raw := "```json\n[{\"kind\":\"mcq\"}]\n```"
	assert.Equal(t, `[{"kind":"mcq"}]`, ExtractJSON(raw))
}

func TestExtractJSONProseAroundObject(t *testing.T) {
	raw := `Sure! Here is the result: {"correct": true, "reason": "matches"} Hope that helps.`
	assert.Equal(t, `{"correct": true, "reason": "matches"}`, ExtractJSON(raw))
}

func TestExtractJSONTrailingProseAfterArray(t *testing.T) {
	raw := `[{"front":"Q","back":"A"}]
Let me know if you want more cards.`
	assert.Equal(t, `[{"front":"Q","back":"A"}]`, ExtractJSON(raw))
}

func TestExtractJSONNoStructure(t *testing.T) {
	assert.Equal(t, "[]", ExtractJSON("I cannot answer that."))
	assert.Equal(t, "[]", ExtractJSON(""))
	assert.Equal(t, "[]", ExtractJSON("   "))
}

func TestExtractJSONUnparsableFallsBack(t *testing.T) {
	assert.Equal(t, "[]", ExtractJSON(`{"broken": `))
}
