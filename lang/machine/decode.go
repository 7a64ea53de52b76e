package machine

import "github.com/DrkWithT/ExpliceLang/lang/compiler"

// decodeI32 reassembles a little-endian 4-byte field by plain byte
// assembly: (b0) | (b1<<8) | (b2<<16) | (b3<<24).
func decodeI32(b0, b1, b2, b3 byte) int32 {
	return int32(uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24)
}

// decodeLocator reads one (region, id) pair starting at pos and returns it
// along with the position just past it (5 bytes consumed).
func decodeLocator(code []byte, pos int) (compiler.Locator, int) {
	region := compiler.RegionTag(code[pos])
	id := decodeI32(code[pos+1], code[pos+2], code[pos+3], code[pos+4])
	return compiler.Locator{Region: region, ID: id}, pos + 5
}
