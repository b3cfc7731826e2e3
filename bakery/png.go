package bakery

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"io"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// maxChunkLength is the largest chunk length the PNG spec allows (2^31-1).
const maxChunkLength = 1<<31 - 1

// maxInflatedPayload caps decompressed iTXt and zTXt payloads.
const maxInflatedPayload = 8 << 20

type pngChunk struct {
	typ  string
	data []byte
}

func hasPNGSignature(b []byte) bool {
	return len(b) >= len(pngSignature) && bytes.Equal(b[:len(pngSignature)], pngSignature)
}

// readPNGChunks splits a PNG stream into chunks, verifying lengths and CRCs.
func readPNGChunks(b []byte) ([]pngChunk, error) {
	if !hasPNGSignature(b) {
		return nil, corrupt("missing PNG signature")
	}

	var chunks []pngChunk
	rest := b[len(pngSignature):]
	for len(rest) > 0 {
		if len(rest) < 12 {
			return nil, corrupt("truncated chunk header")
		}

		length := binary.BigEndian.Uint32(rest[:4])
		if length > maxChunkLength || uint64(length)+12 > uint64(len(rest)) {
			return nil, corrupt("chunk length %d exceeds remaining data", length)
		}

		typ := string(rest[4:8])
		data := rest[8 : 8+length]
		want := binary.BigEndian.Uint32(rest[8+length : 12+length])
		if got := crc32.ChecksumIEEE(rest[4 : 8+length]); got != want {
			return nil, corrupt("CRC mismatch in %s chunk", typ)
		}

		chunks = append(chunks, pngChunk{typ: typ, data: data})
		rest = rest[12+length:]

		if typ == "IEND" {
			break
		}
	}

	if len(chunks) == 0 || chunks[0].typ != "IHDR" {
		return nil, corrupt("first chunk is not IHDR")
	}
	if chunks[len(chunks)-1].typ != "IEND" {
		return nil, corrupt("missing IEND chunk")
	}

	return chunks, nil
}

func writePNGChunks(chunks []pngChunk) []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature)

	var word [4]byte
	for _, c := range chunks {
		binary.BigEndian.PutUint32(word[:], uint32(len(c.data)))
		buf.Write(word[:])

		crc := crc32.NewIEEE()
		_, _ = crc.Write([]byte(c.typ))
		_, _ = crc.Write(c.data)

		buf.WriteString(c.typ)
		buf.Write(c.data)
		binary.BigEndian.PutUint32(word[:], crc.Sum32())
		buf.Write(word[:])
	}

	return buf.Bytes()
}

func isBadgeTextChunk(c pngChunk) bool {
	if c.typ != "iTXt" && c.typ != "tEXt" && c.typ != "zTXt" {
		return false
	}
	return bytes.HasPrefix(c.data, []byte(Keyword+"\x00"))
}

func bakePNG(image []byte, payload string) ([]byte, error) {
	chunks, err := readPNGChunks(image)
	if err != nil {
		return nil, err
	}

	// keyword, null, compression flag, compression method,
	// empty language tag, empty translated keyword, text.
	var data bytes.Buffer
	data.WriteString(Keyword)
	data.Write([]byte{0, 0, 0, 0, 0})
	data.WriteString(payload)

	out := make([]pngChunk, 0, len(chunks)+1)
	for _, c := range chunks {
		if isBadgeTextChunk(c) {
			continue
		}
		out = append(out, c)
		if c.typ == "IHDR" {
			out = append(out, pngChunk{typ: "iTXt", data: data.Bytes()})
		}
	}

	return writePNGChunks(out), nil
}

func unbakePNG(image []byte) (string, error) {
	chunks, err := readPNGChunks(image)
	if err != nil {
		return "", err
	}

	var plain *pngChunk
	for i, c := range chunks {
		if !isBadgeTextChunk(c) {
			continue
		}

		switch c.typ {
		case "iTXt":
			return parseITXt(c.data)
		case "tEXt", "zTXt":
			if plain == nil {
				plain = &chunks[i]
			}
		}
	}

	if plain == nil {
		return "", ErrNotBaked
	}
	if plain.typ == "zTXt" {
		return parseZTXt(plain.data)
	}
	return string(bytes.TrimLeft(plain.data[len(Keyword)+1:], "\x00")), nil
}

// parseZTXt inflates a zTXt chunk whose keyword is Keyword.
func parseZTXt(data []byte) (string, error) {
	rest := data[len(Keyword)+1:]
	if len(rest) < 1 {
		return "", corrupt("truncated zTXt chunk")
	}
	if rest[0] != 0 {
		return "", corrupt("unknown zTXt compression method %d", rest[0])
	}
	return inflate("zTXt", rest[1:])
}

// parseITXt returns the text of an iTXt chunk whose keyword is Keyword.
func parseITXt(data []byte) (string, error) {
	rest := data[len(Keyword)+1:]
	if len(rest) < 2 {
		return "", corrupt("truncated iTXt chunk")
	}
	compressed := rest[0] == 1
	rest = rest[2:]

	// language tag and translated keyword are null terminated.
	for i := 0; i < 2; i++ {
		idx := bytes.IndexByte(rest, 0)
		if idx < 0 {
			return "", corrupt("unterminated iTXt header field")
		}
		rest = rest[idx+1:]
	}

	if !compressed {
		// Some bakers pad the keyword with extra null separators.
		return string(bytes.TrimLeft(rest, "\x00")), nil
	}

	return inflate("iTXt", rest)
}

func inflate(typ string, data []byte) (string, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", corrupt("%s decompression: %v", typ, err)
	}
	defer zr.Close()

	text, err := io.ReadAll(io.LimitReader(zr, maxInflatedPayload))
	if err != nil {
		return "", corrupt("%s decompression: %v", typ, err)
	}
	return string(text), nil
}
