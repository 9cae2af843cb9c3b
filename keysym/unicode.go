package keysym

// Legacy (non-unicode) keysyms with a unicode equivalent.
var legacyToRune = map[Keysym]rune{
	// latin-2: keysym = 0x100 + iso-8859-2 byte
	0x1a1: 0x0104, 0x1a2: 0x02d8, 0x1a3: 0x0141, 0x1a5: 0x013d,
	0x1a6: 0x015a, 0x1a9: 0x0160, 0x1aa: 0x015e, 0x1ab: 0x0164,
	0x1ac: 0x0179, 0x1ae: 0x017d, 0x1af: 0x017b, 0x1b1: 0x0105,
	0x1b2: 0x02db, 0x1b3: 0x0142, 0x1b5: 0x013e, 0x1b6: 0x015b,
	0x1b7: 0x02c7, 0x1b9: 0x0161, 0x1ba: 0x015f, 0x1bb: 0x0165,
	0x1bc: 0x017a, 0x1bd: 0x02dd, 0x1be: 0x017e, 0x1bf: 0x017c,
	0x1c0: 0x0154, 0x1c3: 0x0102, 0x1c5: 0x0139, 0x1c6: 0x0106,
	0x1c8: 0x010c, 0x1ca: 0x0118, 0x1cc: 0x011a, 0x1cf: 0x010e,
	0x1d0: 0x0110, 0x1d1: 0x0143, 0x1d2: 0x0147, 0x1d5: 0x0150,
	0x1d8: 0x0158, 0x1d9: 0x016e, 0x1db: 0x0170, 0x1de: 0x0162,
	0x1e0: 0x0155, 0x1e3: 0x0103, 0x1e5: 0x013a, 0x1e6: 0x0107,
	0x1e8: 0x010d, 0x1ea: 0x0119, 0x1ec: 0x011b, 0x1ef: 0x010f,
	0x1f0: 0x0111, 0x1f1: 0x0144, 0x1f2: 0x0148, 0x1f5: 0x0151,
	0x1f8: 0x0159, 0x1f9: 0x016f, 0x1fb: 0x0171, 0x1fe: 0x0163,
	0x1ff: 0x02d9,

	// latin-9
	0x13bc: 0x0152, 0x13bd: 0x0153, 0x13be: 0x0178,

	// cyrillic (serbian, macedonian, ukrainian, byelorussian)
	0x6a1: 0x0452, 0x6a2: 0x0453, 0x6a3: 0x0451, 0x6a4: 0x0454,
	0x6a5: 0x0455, 0x6a6: 0x0456, 0x6a7: 0x0457, 0x6a8: 0x0458,
	0x6a9: 0x0459, 0x6aa: 0x045a, 0x6ab: 0x045b, 0x6ac: 0x045c,
	0x6ad: 0x0491, 0x6ae: 0x045e, 0x6af: 0x045f, 0x6b0: 0x2116,
	0x6b1: 0x0402, 0x6b2: 0x0403, 0x6b3: 0x0401, 0x6b4: 0x0404,
	0x6b5: 0x0405, 0x6b6: 0x0406, 0x6b7: 0x0407, 0x6b8: 0x0408,
	0x6b9: 0x0409, 0x6ba: 0x040a, 0x6bb: 0x040b, 0x6bc: 0x040c,
	0x6bd: 0x0490, 0x6be: 0x040e, 0x6bf: 0x040f,

	// publishing
	0xaa9: 0x2014, 0xaaa: 0x2013, 0xaae: 0x2026,
	0xad0: 0x2018, 0xad1: 0x2019, 0xad2: 0x201c, 0xad3: 0x201d,

	0x20ac: 0x20ac, // EuroSign

	// keypad and control keys
	BackSpace: 0x08, Tab: 0x09, Linefeed: 0x0a, Clear: 0x0b,
	Return: 0x0d, Escape: 0x1b, Delete: 0x7f,
	KPSpace: ' ', KPTab: 0x09, KPEnter: 0x0d, KPEqual: '=',
	KPMultiply: '*', KPAdd: '+', KPSeparator: ',', KPSubtract: '-',
	KPDecimal: '.', KPDivide: '/',
}

// cyrillic letters in koi8 order, lowercase keysyms 0x6c0-0x6df
var cyrillicKoi8 = [32]rune{
	0x044e, 0x0430, 0x0431, 0x0446, 0x0434, 0x0435, 0x0444, 0x0433,
	0x0445, 0x0438, 0x0439, 0x043a, 0x043b, 0x043c, 0x043d, 0x043e,
	0x043f, 0x044f, 0x0440, 0x0441, 0x0442, 0x0443, 0x0436, 0x0432,
	0x044c, 0x044b, 0x0437, 0x0448, 0x044d, 0x0449, 0x0447, 0x044a,
}

var runeToLegacy = map[rune]Keysym{}

func init() {
	for i, r := range cyrillicKoi8 {
		legacyToRune[Keysym(0x6c0+i)] = r
		legacyToRune[Keysym(0x6e0+i)] = r - 0x20 // uppercase
	}
	// greek: contiguous alpha..omega
	for i := Keysym(0); i <= 0x18; i++ {
		if i == 0x11 { // no uppercase final sigma
			legacyToRune[0x7e1+i] = rune(0x03b1 + i)
			continue
		}
		legacyToRune[0x7c1+i] = rune(0x0391 + i)
		legacyToRune[0x7e1+i] = rune(0x03b1 + i)
	}
	for ks, r := range legacyToRune {
		if r < 0x20 || r == 0x7f || (ks >= KPSpace && ks <= KPEqual) {
			continue
		}
		runeToLegacy[r] = ks
	}
}

//----------

// Returns the unicode character for the keysym, or 0 if there is none.
func ToRune(ks Keysym) rune {
	switch {
	case ks >= 0x20 && ks <= 0x7e, ks >= 0xa0 && ks <= 0xff:
		return rune(ks)
	case ks >= unicodeOffset && ks <= unicodeMax:
		return rune(ks - unicodeOffset)
	case ks >= KP0 && ks <= KP9:
		return rune('0' + ks - KP0)
	}
	return legacyToRune[ks]
}

// Returns the keysym that produces the unicode character.
func FromRune(r rune) Keysym {
	switch {
	case r >= 0x20 && r <= 0x7e, r >= 0xa0 && r <= 0xff:
		return Keysym(r)
	case r == '\n' || r == '\r':
		return Return
	case r == '\t':
		return Tab
	case r == '\b':
		return BackSpace
	case r == 0x1b:
		return Escape
	case r == 0x7f:
		return Delete
	}
	if ks, ok := runeToLegacy[r]; ok {
		return ks
	}
	return unicodeOffset | Keysym(r)
}
