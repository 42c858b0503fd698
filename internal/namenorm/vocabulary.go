package namenorm

// DefaultVocabulary returns the release tokens dropped during normalization.
// Matching is case-insensitive against whole tokens after separator splitting,
// so dot-, underscore-, and space-separated names all strip identically.
// Callers may extend the list through New.
func DefaultVocabulary() []string {
	return []string{
		// Resolution and dynamic range.
		"4k", "uhd", "fhd", "sdr", "hdr", "hdr10", "hdr10plus", "hlg", "dovi",
		// Source.
		"bluray", "blu-ray", "bdrip", "brrip", "remux", "webdl", "web-dl",
		"webrip", "web", "dl", "hdtv", "pdtv", "sdtv", "dvdrip", "dvdscr",
		"dvd", "cam", "hdts", "telesync", "tc", "r5",
		// Streaming platforms.
		"amzn", "nf", "dsnp", "hmax", "hulu", "atvp", "pcok", "pmtp",
		// Video codecs.
		"x264", "x265", "x266", "hevc", "avc", "av1", "h264", "h265", "h266",
		"xvid", "divx", "mpeg2", "vp9",
		// Audio codecs.
		"truehd", "atmos", "flac", "pcm", "opus", "mp3", "dts", "aac", "ac3",
		"eac3", "dd", "ddp", "stereo", "mono",
		// Bit depth.
		"8bit", "10bit", "12bit",
		// Release tags.
		"proper", "repack", "internal", "limited", "unrated", "extended",
		"remastered", "multi", "dual", "dubbed", "subbed", "subs",
	}
}

// tokenClassPatterns match token shapes rather than literal tokens:
// resolution markers, audio tags with channel counts fused on, and release
// version suffixes.
var tokenClassPatterns = []string{
	`^\d{3,4}[pi]$`,
	`^(dd|ddp|eac3|ac3|aac)\d+$`,
	`^v\d+$`,
}

// prePassPatterns run against the raw name before separator splitting. They
// cover multi-part tags whose internal separators would otherwise shatter
// them into innocent-looking tokens.
var prePassPatterns = []string{
	`\[[^\]]*\]`,
	`\((?:iso|rip|cd\d|disc\d|disk\d)\)`,
	`\bH[ ._-]?26[456]\b`,
	`\b(DD\+?|DDP|E?AC3|AAC)[ ._-]?\d[ ._-]\d\b`,
	`\bDTS[ ._-]?(HD[ ._-]?(MA|HRA)|X|ES)\b`,
	`\bDolby[ ._-]?Vision\b`,
	`\b\d[ ._-]\d\b`,
}

// releaseStylePattern decides whether a name looks like a release-tagged file
// at all; only then is a trailing "-GROUP" suffix stripped, so hyphenated
// plain titles keep their last word.
const releaseStylePattern = `\b(\d{3,4}[pi]|bluray|blu-ray|remux|web-?dl|webrip|hdtv|dvdrip|x26[456]|hevc|h[ ._-]?26[456])\b`

// groupSuffixPattern matches a trailing release-group tag.
const groupSuffixPattern = `-[A-Za-z0-9]+\s*$`
