package tape

import (
	"encoding/binary"
	"testing"
)

// buildCUE assembles a minimal .cas-with-CUE buffer: some leading
// "file data" bytes, then the CUE section, then the trailing offset
// marker and "CUE]" literal.
func buildCUE(t *testing.T, leading []byte, chunks []byte) []byte {
	t.Helper()
	buf := append([]byte{}, leading...)
	cueOffset := uint32(len(buf))
	buf = append(buf, []byte(cueHeader)...)
	buf = append(buf, chunks...)
	offsetBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(offsetBytes, cueOffset)
	buf = append(buf, offsetBytes...)
	buf = append(buf, []byte(cueTrailer)...)
	return buf
}

func TestParseCUETimingChunk(t *testing.T) {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint16(payload[0:2], 1200)
	binary.LittleEndian.PutUint16(payload[2:4], 2400)
	chunks := append([]byte{byte(ChunkTiming)}, payload...)

	buf := buildCUE(t, []byte("leading-data"), chunks)
	got, err := ParseCUE(buf)
	if err != nil {
		t.Fatalf("ParseCUE: %v", err)
	}
	if len(got) != 1 || got[0].Type != ChunkTiming {
		t.Fatalf("got %+v, want one TIMING chunk", got)
	}
	if got[0].Bit0Hz != 1200 || got[0].Bit1Hz != 2400 {
		t.Fatalf("frequencies = %d/%d, want 1200/2400", got[0].Bit0Hz, got[0].Bit1Hz)
	}
}

func TestParseCUEMultipleChunkTypes(t *testing.T) {
	var chunks []byte
	chunks = append(chunks, byte(ChunkSilence))
	sil := make([]byte, 2)
	binary.LittleEndian.PutUint16(sil, 500)
	chunks = append(chunks, sil...)

	chunks = append(chunks, byte(ChunkData))
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:4], 0x100)
	binary.LittleEndian.PutUint32(data[4:8], 0x200)
	chunks = append(chunks, data...)

	buf := buildCUE(t, nil, chunks)
	got, err := ParseCUE(buf)
	if err != nil {
		t.Fatalf("ParseCUE: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if got[0].Type != ChunkSilence || got[0].SilenceMS != 500 {
		t.Fatalf("silence chunk = %+v", got[0])
	}
	if got[1].Type != ChunkData || got[1].DataStart != 0x100 || got[1].DataEnd != 0x200 {
		t.Fatalf("data chunk = %+v", got[1])
	}
}

func TestParseCUENoMarkerReturnsErrNoCueSection(t *testing.T) {
	_, err := ParseCUE([]byte("plain cas file with no cue section at all"))
	if err != ErrNoCueSection {
		t.Fatalf("err = %v, want ErrNoCueSection", err)
	}
}

func TestParseCUETruncatedChunkIsMalformed(t *testing.T) {
	chunks := []byte{byte(ChunkTiming), 0x01, 0x02} // only 2 of 4 payload bytes
	buf := buildCUE(t, nil, chunks)
	_, err := ParseCUE(buf)
	if err != ErrMalformedCue {
		t.Fatalf("err = %v, want ErrMalformedCue", err)
	}
}
