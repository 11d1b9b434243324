package ir

// Version constants for the IR encoding and the translator.
const (
	// IRVersion is the version of the canonical IR encoding.
	IRVersion = "1"

	// TranslatorVersion is reported by the CLI and recorded with history
	// entries.
	TranslatorVersion = "0.1.0"
)
