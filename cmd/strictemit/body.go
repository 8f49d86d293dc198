package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/chazu/strictemit/manifest"
	"github.com/chazu/strictemit/pkg/bytecode"
)

var (
	commentColor  = color.New(color.FgHiBlack)
	offsetColor   = color.New(color.FgBlue)
	mnemonicColor = color.New(color.FgGreen, color.Bold)
)

// outputFormat picks the body format: the flag if set, then the manifest,
// then binary.
func outputFormat(flag string, m *manifest.Manifest) (string, error) {
	format := strings.ToLower(flag)
	if format == "" && m != nil {
		format = m.Output.Format
	}
	if format == "" {
		format = manifest.FormatBinary
	}
	switch format {
	case manifest.FormatBinary, manifest.FormatCBOR:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q (must be binary or cbor)", format)
	}
}

func encodeBody(b *bytecode.Body, format string) ([]byte, error) {
	if format == manifest.FormatCBOR {
		return bytecode.MarshalBody(b)
	}
	return b.Serialize()
}

// decodeBody decodes data in format. An empty format is detected from the
// binary magic.
func decodeBody(data []byte, format string) (*bytecode.Body, error) {
	switch strings.ToLower(format) {
	case "":
		if bytes.HasPrefix(data, bytecode.BodyMagic) {
			return bytecode.Deserialize(data)
		}
		return bytecode.UnmarshalBody(data)
	case manifest.FormatBinary:
		return bytecode.Deserialize(data)
	case manifest.FormatCBOR:
		return bytecode.UnmarshalBody(data)
	default:
		return nil, fmt.Errorf("unsupported format %q (must be binary or cbor)", format)
	}
}

// colorizeListing highlights a disassembly listing. Returns the listing
// unchanged when color is disabled.
func colorizeListing(listing string) string {
	if color.NoColor {
		return listing
	}
	lines := strings.Split(listing, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, ";") {
			lines[i] = commentColor.Sprint(line)
			continue
		}
		offset, rest, ok := strings.Cut(line, "  ")
		if !ok {
			continue
		}
		mnemonic, operand, _ := strings.Cut(rest, " ")
		colored := offsetColor.Sprint(offset) + "  " + mnemonicColor.Sprint(mnemonic)
		if operand != "" {
			colored += " " + operand
		}
		lines[i] = colored
	}
	return strings.Join(lines, "\n")
}
