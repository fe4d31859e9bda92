// Package objwriter builds the relocatable ELF64 object this assembler
// emits: a single PROGBITS .text section carrying the assembled code and
// one global STT_FUNC symbol, _start, bound to it at offset 0. This is
// the "external object-writing library" spec.md §6 calls out as an
// explicit boundary — the resolver and encoder never import this package,
// only the driver does.
//
// Section and symbol-table layout is assembled by hand with
// encoding/binary against the same type/constant surface as the standard
// library's debug/elf (Binject/debug/elf is a writable fork of it, kept
// drop-in compatible for these read-side types): this repo doesn't lean
// on a high-level convenience writer from that fork because none is
// documented in the retrieval pack, so the section and symbol tables are
// laid out directly against the ELF64 spec the constants describe.
package objwriter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	elf "github.com/Binject/debug/elf"
)

const (
	shstrtabName = ".shstrtab"
	strtabName   = ".strtab"
	symtabName   = ".symtab"
	textName     = ".text"
	startSymbol  = "_start"

	ehdrSize  = 64
	shdrSize  = 64
	symSize   = 24
	sectCount = 5 // NULL, .text, .symtab, .strtab, .shstrtab
)

// Write constructs the ELF64 relocatable object containing code as a
// single .text section and writes it to path.
func Write(path string, code []byte) error {
	var buf bytes.Buffer

	shstrtab := newStringTable()
	textNameOff := shstrtab.add(textName)
	symtabNameOff := shstrtab.add(symtabName)
	strtabNameOff := shstrtab.add(strtabName)
	shstrtabNameOff := shstrtab.add(shstrtabName)

	strtab := newStringTable()
	startNameOff := strtab.add(startSymbol)

	// Symbol table: index 0 is the mandatory null symbol, index 1 is
	// _start bound to section index 1 (.text).
	symtab := new(bytes.Buffer)
	writeSymbol(symtab, 0, 0, 0, 0)
	writeSymbol(symtab, startNameOff, elfSymInfo(elf.STB_GLOBAL, elf.STT_FUNC), 1, 0)

	// Layout: header, then section payloads in section-index order,
	// then the section header table.
	textOff := uint64(ehdrSize)
	symtabOff := textOff + uint64(len(code))
	strtabOff := symtabOff + uint64(symtab.Len())
	shstrtabOff := strtabOff + uint64(len(strtab.bytes()))
	shoff := shstrtabOff + uint64(len(shstrtab.bytes()))

	writeHeader(&buf, shoff)
	buf.Write(code)
	buf.Write(symtab.Bytes())
	buf.Write(strtab.bytes())
	buf.Write(shstrtab.bytes())

	writeSectionHeader(&buf, sectionHeader{}) // index 0: NULL
	writeSectionHeader(&buf, sectionHeader{
		nameOff: textNameOff,
		typ:     uint32(elf.SHT_PROGBITS),
		flags:   uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
		offset:  textOff,
		size:    uint64(len(code)),
		align:   4,
	})
	writeSectionHeader(&buf, sectionHeader{
		nameOff: symtabNameOff,
		typ:     uint32(elf.SHT_SYMTAB),
		offset:  symtabOff,
		size:    uint64(symtab.Len()),
		link:    3, // .strtab section index
		info:    1, // index of first global symbol
		align:   8,
		entsize: symSize,
	})
	writeSectionHeader(&buf, sectionHeader{
		nameOff: strtabNameOff,
		typ:     uint32(elf.SHT_STRTAB),
		offset:  strtabOff,
		size:    uint64(len(strtab.bytes())),
		align:   1,
	})
	writeSectionHeader(&buf, sectionHeader{
		nameOff: shstrtabNameOff,
		typ:     uint32(elf.SHT_STRTAB),
		offset:  shstrtabOff,
		size:    uint64(len(shstrtab.bytes())),
		align:   1,
	})

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("objwriter: writing %s: %w", path, err)
	}
	return nil
}

// elfSymInfo mirrors stdlib debug/elf's ST_INFO helper: bind in the high
// nibble, type in the low nibble.
func elfSymInfo(bind elf.SymBind, typ elf.SymType) byte {
	return byte(bind)<<4 | byte(typ)&0xF
}

func writeHeader(buf *bytes.Buffer, shoff uint64) {
	var ident [16]byte
	ident[0] = 0x7F
	ident[1] = 'E'
	ident[2] = 'L'
	ident[3] = 'F'
	ident[4] = byte(elf.ELFCLASS64)
	ident[5] = byte(elf.ELFDATA2LSB)
	ident[6] = 1 // EV_CURRENT

	buf.Write(ident[:])
	writeLE(buf, uint16(elf.ET_REL))
	writeLE(buf, uint16(elf.EM_AARCH64))
	writeLE(buf, uint32(1)) // e_version
	writeLE(buf, uint64(0)) // e_entry
	writeLE(buf, uint64(0)) // e_phoff
	writeLE(buf, shoff)     // e_shoff
	writeLE(buf, uint32(0)) // e_flags
	writeLE(buf, uint16(ehdrSize))
	writeLE(buf, uint16(0)) // e_phentsize
	writeLE(buf, uint16(0)) // e_phnum
	writeLE(buf, uint16(shdrSize))
	writeLE(buf, uint16(sectCount))
	writeLE(buf, uint16(4)) // e_shstrndx: .shstrtab is section index 4
}

type sectionHeader struct {
	nameOff uint32
	typ     uint32
	flags   uint64
	offset  uint64
	size    uint64
	link    uint32
	info    uint32
	align   uint64
	entsize uint64
}

func writeSectionHeader(buf *bytes.Buffer, sh sectionHeader) {
	writeLE(buf, sh.nameOff)
	writeLE(buf, sh.typ)
	writeLE(buf, sh.flags)
	writeLE(buf, uint64(0)) // sh_addr
	writeLE(buf, sh.offset)
	writeLE(buf, sh.size)
	writeLE(buf, sh.link)
	writeLE(buf, sh.info)
	writeLE(buf, sh.align)
	writeLE(buf, sh.entsize)
}

func writeSymbol(buf *bytes.Buffer, nameOff uint32, info byte, shndx uint16, value uint64) {
	writeLE(buf, nameOff)
	buf.WriteByte(info)
	buf.WriteByte(0) // st_other
	writeLE(buf, shndx)
	writeLE(buf, value)
	writeLE(buf, uint64(0)) // st_size
}

func writeLE(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

// stringTable is a standard ELF string table: byte 0 is always NUL, and
// add returns the offset at which name's NUL-terminated bytes begin.
type stringTable struct {
	data []byte
}

func newStringTable() *stringTable {
	return &stringTable{data: []byte{0}}
}

func (t *stringTable) add(name string) uint32 {
	off := uint32(len(t.data))
	t.data = append(t.data, name...)
	t.data = append(t.data, 0)
	return off
}

func (t *stringTable) bytes() []byte {
	return t.data
}
