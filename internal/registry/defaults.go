package registry

// DefaultDeclarations returns the projects merged to build WebView; other upstream
// repositories used only by the full browser are not managed.
func DefaultDeclarations() Declarations {
	return Declarations{
		FlatHistory: []string{
			"third_party/WebKit",
		},
		FullHistory: []string{
			"googleurl",
			"sdch/open-vcdiff",
			"testing/gtest",
			"third_party/angle",
			"third_party/freetype",
			"third_party/icu",
			"third_party/leveldatabase/src",
			"third_party/libjingle/source",
			"third_party/libphonenumber/src/phonenumbers",
			"third_party/libphonenumber/src/resources",
			"third_party/openssl",
			"third_party/ots",
			"third_party/skia/include",
			"third_party/skia/gyp",
			"third_party/skia/src",
			"third_party/smhasher/src",
			"third_party/v8-i18n",
			"tools/grit",
			"tools/gyp",
			"v8",
		},
		Prune: map[string][]string{
			"third_party/WebKit": {
				"LayoutTests",
			},
		},
	}
}
