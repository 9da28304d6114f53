package checksum

import (
	"bytes"
	"testing"
)

func TestSumKnownVector(t *testing.T) {
	// sha256 of the empty string.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %s, want %s", got, want)
	}
}

func TestSumReaderMatchesSum(t *testing.T) {
	data := []byte("boleta 545109 BANCO INDUSTRIAL Q1500")
	fromReader, err := SumReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("SumReader: %v", err)
	}
	if fromReader != Sum(data) {
		t.Errorf("SumReader = %s, Sum = %s", fromReader, Sum(data))
	}
}

func TestMatcher(t *testing.T) {
	data := []byte("contenido del recibo")

	t.Run("match", func(t *testing.T) {
		ok, err := NewMatcher(Sum(data)).Match(data)
		if err != nil || !ok {
			t.Errorf("Match = %v, %v; want true, nil", ok, err)
		}
	})
	t.Run("mismatch", func(t *testing.T) {
		ok, err := NewMatcher(Sum(data)).Match([]byte("otro contenido"))
		if err != nil || ok {
			t.Errorf("Match = %v, %v; want false, nil", ok, err)
		}
	})
	t.Run("empty expected", func(t *testing.T) {
		if _, err := NewMatcher("").Match(data); err == nil {
			t.Error("empty expected checksum should error")
		}
	})
}
