package compiler

import (
	"bufio"
	"bytes"
	"debug/elf"
	"debug/macho"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FunctionPrefix is prepended to declared names to form the exported symbol
const FunctionPrefix = "ft_"

const (
	archiveMagic     = "!<arch>\n"
	memberHeaderSize = 60
	memberHeaderEnd  = "`\n"
)

var errNotArchive = errors.New("not a static archive")

const (
	machoExternal = 0x01
	machoTypeMask = 0x0e
	machoSection  = 0x0e
)

// ArchiveSymbols returns the set of global symbols defined by the object
// files of a static archive. ELF and Mach-O members are understood; other
// members are ignored.
func ArchiveSymbols(path string) (_ map[string]bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to decode archive %s: %v", path, r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	symbols := make(map[string]bool)
	err = walkArchive(f, func(name string, data []byte) {
		if isIndexMember(name) {
			return
		}
		// BSD long names: "#1/<len>" with the name stored ahead of the data
		if n, ok := strings.CutPrefix(name, "#1/"); ok {
			if size, err := strconv.Atoi(n); err == nil && size <= len(data) {
				data = data[size:]
			}
		}
		for _, sym := range objectSymbols(data) {
			symbols[sym] = true
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", path, err)
	}
	return symbols, nil
}

// walkArchive calls fn for every member of the archive in r. Only the name
// and size header fields are read: GNU deterministic archives write fields
// such as the mode as a bare "0", which stricter readers reject.
func walkArchive(r io.Reader, fn func(name string, data []byte)) error {
	br := bufio.NewReader(r)
	magic := make([]byte, len(archiveMagic))
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != archiveMagic {
		return errNotArchive
	}

	hdr := make([]byte, memberHeaderSize)
	for {
		if _, err := io.ReadFull(br, hdr); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("truncated member header: %w", err)
		}
		if string(hdr[58:60]) != memberHeaderEnd {
			return fmt.Errorf("malformed member header %q", hdr)
		}
		name := strings.TrimSpace(string(hdr[0:16]))
		size, err := strconv.ParseInt(strings.TrimSpace(string(hdr[48:58])), 10, 64)
		if err != nil || size < 0 {
			return fmt.Errorf("invalid size for member %q", name)
		}

		data, err := io.ReadAll(io.LimitReader(br, size))
		if err != nil {
			return fmt.Errorf("failed to read member %s: %w", name, err)
		}
		if int64(len(data)) != size {
			return fmt.Errorf("member %s truncated: %d of %d bytes", name, len(data), size)
		}
		// members are aligned to even offsets
		if size%2 == 1 {
			if _, err := br.ReadByte(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
		}
		fn(name, data)
	}
}

func isIndexMember(name string) bool {
	switch name {
	case "/", "//", "/SYM64/", "__.SYMDEF", "__.SYMDEF SORTED", "__.SYMDEF_64", "__.SYMDEF_64 SORTED":
		return true
	}
	return false
}

func objectSymbols(data []byte) []string {
	if f, err := elf.NewFile(bytes.NewReader(data)); err == nil {
		defer f.Close()
		return elfSymbols(f)
	}
	if f, err := macho.NewFile(bytes.NewReader(data)); err == nil {
		defer f.Close()
		return machoSymbols(f)
	}
	return nil
}

func elfSymbols(f *elf.File) []string {
	syms, err := f.Symbols()
	if err != nil {
		return nil
	}
	var names []string
	for _, s := range syms {
		if s.Section == elf.SHN_UNDEF || s.Name == "" {
			continue
		}
		bind := elf.ST_BIND(s.Info)
		if bind != elf.STB_GLOBAL && bind != elf.STB_WEAK {
			continue
		}
		names = append(names, s.Name)
	}
	return names
}

func machoSymbols(f *macho.File) []string {
	if f.Symtab == nil {
		return nil
	}
	var names []string
	for _, s := range f.Symtab.Syms {
		if s.Type&machoExternal == 0 || s.Type&machoTypeMask != machoSection {
			continue
		}
		names = append(names, strings.TrimPrefix(s.Name, "_"))
	}
	return names
}

// ImplementedFunctions returns the declared functions whose ft_ symbol the
// archive defines, in declared order.
func ImplementedFunctions(archive string, declared []string) ([]string, error) {
	symbols, err := ArchiveSymbols(archive)
	if err != nil {
		return nil, err
	}
	var implemented []string
	for _, fn := range declared {
		if symbols[FunctionPrefix+fn] {
			implemented = append(implemented, fn)
		}
	}
	return implemented, nil
}
