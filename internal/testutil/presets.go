package testutil

// WithStandardArtifacts adds the standard fixture set:
//
//	tools/kitware/cmake      3.28.1, 3.27.0
//	tools/ninja-build/ninja  1.11.1
//	compilers/arm/gcc        10.2.1 (en-us), 10.2.1-ja (ja-jp)
//	tools/broken/thing       1.0.0, exports but not installed
func (b *Builder) WithStandardArtifacts() *Builder {
	return b.
		WithArtifact("tools/kitware/cmake", "3.28.1",
			Summary("CMake build system"),
			PathExport("PATH", "bin"), Env("CMAKE_ROOT", "."),
			Property("CMakeVersion", "3.28.1"), Tool("cmake", "bin/cmake")).
		WithArtifact("tools/kitware/cmake", "3.27.0",
			PathExport("PATH", "bin"), Env("CMAKE_ROOT", ".")).
		WithArtifact("tools/ninja-build/ninja", "1.11.1",
			Summary("Small build system"), PathExport("PATH", ".")).
		WithArtifact("compilers/arm/gcc", "10.2.1",
			Languages("en-us"), PathExport("PATH", "bin")).
		WithArtifact("compilers/arm/gcc", "10.2.1-ja",
			Languages("ja-jp"), PathExport("PATH", "bin")).
		WithArtifact("tools/broken/thing", "1.0.0",
			NotInstalled(), Env("THING_ROOT", "."))
}
