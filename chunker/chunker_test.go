package chunker_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sdiallo/docqa/chunker"
)

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "valid", size: 4, overlap: 1, wantErr: false},
		{name: "zero overlap", size: 4, overlap: 0, wantErr: false},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative size", size: -1, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 4, overlap: -1, wantErr: true},
		{name: "overlap equals size", size: 4, overlap: 4, wantErr: true},
		{name: "overlap exceeds size", size: 4, overlap: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chunker.New(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestChunkEmptyText(t *testing.T) {
	c, err := chunker.New(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"", "   ", "\n\t  \n"} {
		if got := c.Chunk(text); len(got) != 0 {
			t.Errorf("Chunk(%q) = %v, want no chunks", text, got)
		}
	}
}

func TestChunkWindowing(t *testing.T) {
	// Ten distinct words, size=4 overlap=1: windows start at 0, 3, 6, 9
	// and the last chunk holds a single word.
	words := make([]string, 10)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	c, err := chunker.New(4, 1)
	if err != nil {
		t.Fatal(err)
	}

	chunks := c.Chunk(strings.Join(words, " "))
	want := []string{
		"w0 w1 w2 w3",
		"w3 w4 w5 w6",
		"w6 w7 w8 w9",
		"w9",
	}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks %v, want %d", len(chunks), chunks, len(want))
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestChunkOverlapProperty(t *testing.T) {
	// The last Overlap words of every non-final chunk equal the first
	// Overlap words of the following chunk.
	words := make([]string, 37)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	c, err := chunker.New(8, 3)
	if err != nil {
		t.Fatal(err)
	}

	chunks := c.Chunk(strings.Join(words, " "))
	for i := 0; i < len(chunks)-1; i++ {
		cur := strings.Fields(chunks[i])
		next := strings.Fields(chunks[i+1])
		if len(cur) < c.Overlap || len(next) < c.Overlap {
			continue
		}
		tail := strings.Join(cur[len(cur)-c.Overlap:], " ")
		head := strings.Join(next[:c.Overlap], " ")
		if tail != head {
			t.Errorf("chunk %d tail %q does not match chunk %d head %q", i, tail, i+1, head)
		}
	}
}

func TestChunkDisjointWhenNoOverlap(t *testing.T) {
	words := make([]string, 11)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	c, err := chunker.New(4, 0)
	if err != nil {
		t.Fatal(err)
	}

	chunks := c.Chunk(strings.Join(words, " "))
	var rejoined []string
	for _, ch := range chunks {
		rejoined = append(rejoined, strings.Fields(ch)...)
	}
	if strings.Join(rejoined, " ") != strings.Join(words, " ") {
		t.Errorf("disjoint chunks do not reassemble the input: %v", chunks)
	}
}

func TestCountMatchesChunk(t *testing.T) {
	configs := []struct{ size, overlap int }{
		{4, 1}, {4, 0}, {5, 1}, {8, 3}, {512, 50}, {2, 1},
	}
	for _, cfg := range configs {
		c, err := chunker.New(cfg.size, cfg.overlap)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range []int{0, 1, 2, 5, 10, 12, 100, 511, 512, 513} {
			words := make([]string, n)
			for i := range words {
				words[i] = "x"
			}
			got := len(c.Chunk(strings.Join(words, " ")))
			if want := c.Count(n); got != want {
				t.Errorf("size=%d overlap=%d n=%d: Chunk produced %d, Count says %d",
					cfg.size, cfg.overlap, n, got, want)
			}
		}
	}
}
