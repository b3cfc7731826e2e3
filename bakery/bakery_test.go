package bakery

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPayload = `{"uid":"100","recipient":"sha256$c56e0383f16d3bd4705c11e4eff7002ca27540b2ba0b32d7b389377f9e4d68e2","verify":{"type":"hosted","url":"http://badges.example.org/instance/100"}}`

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 80), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func withChunk(t *testing.T, image []byte, c pngChunk) []byte {
	t.Helper()

	chunks, err := readPNGChunks(image)
	require.NoError(t, err)

	out := []pngChunk{chunks[0], c}
	out = append(out, chunks[1:]...)
	return writePNGChunks(out)
}

func TestBakeUnbakePNG(t *testing.T) {
	original := testPNG(t)

	baked, err := Bake(original, testPayload)
	require.NoError(t, err)

	t.Run("it round trips the payload", func(t *testing.T) {
		got, err := Unbake(baked)
		require.NoError(t, err)
		assert.JSONEq(t, testPayload, got)
	})

	t.Run("it leaves pixel data unchanged", func(t *testing.T) {
		before, err := png.Decode(bytes.NewReader(original))
		require.NoError(t, err)
		after, err := png.Decode(bytes.NewReader(baked))
		require.NoError(t, err)

		assert.Equal(t, before.Bounds(), after.Bounds())
		for x := 0; x < 4; x++ {
			for y := 0; y < 3; y++ {
				assert.Equal(t, before.At(x, y), after.At(x, y))
			}
		}
	})

	t.Run("it keeps the container format", func(t *testing.T) {
		assert.Equal(t, FormatPNG, Detect(baked))
	})

	t.Run("it replaces a previous payload when baked twice", func(t *testing.T) {
		rebaked, err := Bake(baked, `{"uid":"200"}`)
		require.NoError(t, err)

		got, err := Unbake(rebaked)
		require.NoError(t, err)
		assert.JSONEq(t, `{"uid":"200"}`, got)

		chunks, err := readPNGChunks(rebaked)
		require.NoError(t, err)
		count := 0
		for _, c := range chunks {
			if isBadgeTextChunk(c) {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestUnbakePNG(t *testing.T) {
	original := testPNG(t)

	t.Run("it reports an unbaked image as not baked", func(t *testing.T) {
		_, err := Unbake(original)
		assert.ErrorIs(t, err, ErrNotBaked)
	})

	t.Run("it reads a plain text chunk", func(t *testing.T) {
		img := withChunk(t, original, pngChunk{typ: "tEXt", data: []byte(Keyword + "\x00" + testPayload)})

		got, err := Unbake(img)
		require.NoError(t, err)
		assert.Equal(t, testPayload, got)
	})

	t.Run("it prefers the international text chunk over plain text", func(t *testing.T) {
		img := withChunk(t, original, pngChunk{typ: "tEXt", data: []byte(Keyword + "\x00" + `{"uid":"plain"}`)})
		img, err := Bake(img, `{"uid":"international"}`)
		require.NoError(t, err)
		// Bake strips old markers, so put the plain chunk back after the iTXt.
		chunks, err := readPNGChunks(img)
		require.NoError(t, err)
		chunks = append(chunks[:2], append([]pngChunk{{typ: "tEXt", data: []byte(Keyword + "\x00" + `{"uid":"plain"}`)}}, chunks[2:]...)...)
		img = writePNGChunks(chunks)

		got, err := Unbake(img)
		require.NoError(t, err)
		assert.JSONEq(t, `{"uid":"international"}`, got)
	})

	t.Run("it inflates a compressed international text chunk", func(t *testing.T) {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		_, err := zw.Write([]byte(testPayload))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		data := append([]byte(Keyword+"\x00\x01\x00\x00\x00"), z.Bytes()...)
		img := withChunk(t, original, pngChunk{typ: "iTXt", data: data})

		got, err := Unbake(img)
		require.NoError(t, err)
		assert.Equal(t, testPayload, got)
	})

	t.Run("it strips extra null separators", func(t *testing.T) {
		data := []byte(Keyword + "\x00\x00\x00\x00\x00\x00\x00" + testPayload)
		img := withChunk(t, original, pngChunk{typ: "iTXt", data: data})

		got, err := Unbake(img)
		require.NoError(t, err)
		assert.Equal(t, testPayload, got)
	})

	t.Run("it strips extra null separators from plain text chunks", func(t *testing.T) {
		data := []byte(Keyword + "\x00\x00\x00" + testPayload)
		img := withChunk(t, original, pngChunk{typ: "tEXt", data: data})

		got, err := Unbake(img)
		require.NoError(t, err)
		assert.Equal(t, testPayload, got)
	})

	t.Run("it inflates a compressed plain text chunk", func(t *testing.T) {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		_, err := zw.Write([]byte(testPayload))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		data := append([]byte(Keyword+"\x00\x00"), z.Bytes()...)
		img := withChunk(t, original, pngChunk{typ: "zTXt", data: data})

		got, err := Unbake(img)
		require.NoError(t, err)
		assert.Equal(t, testPayload, got)
	})

	t.Run("it flags an unreadable compressed plain text chunk as corrupt", func(t *testing.T) {
		img := withChunk(t, original, pngChunk{typ: "zTXt", data: []byte(Keyword + "\x00\x00not zlib")})

		_, err := Unbake(img)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("it flags a CRC mismatch as corrupt", func(t *testing.T) {
		baked, err := Bake(original, testPayload)
		require.NoError(t, err)
		damaged := bytes.Clone(baked)
		// Flip a byte inside the payload of the iTXt chunk that follows IHDR.
		damaged[8+25+8+20] ^= 0xff

		_, err = Unbake(damaged)
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.NotErrorIs(t, err, ErrNotBaked)
	})

	t.Run("it flags a truncated stream as corrupt", func(t *testing.T) {
		_, err := Unbake(original[:len(original)-6])
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("it rejects unknown containers", func(t *testing.T) {
		_, err := Unbake([]byte("GIF89a not really"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestBakeUnbakeSVG(t *testing.T) {
	const svg = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><circle cx="5" cy="5" r="4"/></svg>`

	t.Run("it reports an unbaked svg as not baked", func(t *testing.T) {
		_, err := Unbake([]byte(svg))
		assert.ErrorIs(t, err, ErrNotBaked)
	})

	t.Run("it round trips the payload", func(t *testing.T) {
		baked, err := Bake([]byte(svg), testPayload)
		require.NoError(t, err)
		assert.Equal(t, FormatSVG, Detect(baked))
		assert.Contains(t, string(baked), `xmlns:openbadges="http://openbadges.org"`)
		assert.Contains(t, string(baked), `verify="http://badges.example.org/instance/100"`)
		assert.Contains(t, string(baked), `<circle cx="5" cy="5" r="4"/>`)

		got, err := Unbake(baked)
		require.NoError(t, err)

		var want, have map[string]any
		require.NoError(t, json.Unmarshal([]byte(testPayload), &want))
		require.NoError(t, json.Unmarshal([]byte(got), &have))
		assert.Equal(t, want, have)
	})

	t.Run("it replaces a previous payload", func(t *testing.T) {
		baked, err := Bake([]byte(svg), testPayload)
		require.NoError(t, err)
		baked, err = Bake(baked, `{"uid":"2"}`)
		require.NoError(t, err)

		assert.Equal(t, 1, bytes.Count(baked, []byte("<openbadges:assertion")))
		assert.Equal(t, 1, bytes.Count(baked, []byte("xmlns:openbadges")))

		got, err := Unbake(baked)
		require.NoError(t, err)
		assert.JSONEq(t, `{"uid":"2"}`, got)
	})

	t.Run("it reads a hosted verify attribute", func(t *testing.T) {
		doc := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:openbadges="http://openbadges.org"><openbadges:assertion verify="https://example.org/a/1"/></svg>`

		got, err := Unbake([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "https://example.org/a/1", got)
	})
}
