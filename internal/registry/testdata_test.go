package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleIndex = `registry:
  name: main
  description: test registry
artifacts:
  - name: tools/kitware/cmake
    version: 3.27.1
    summary: CMake build system
    location: ./cmake-3.27.1
    exports:
      paths: { PATH: [bin] }
      env: { CMAKE_ROOT: . }
      properties: { CMakeVersion: 3.27.1 }
      tools: { cmake: bin/cmake }
  - name: tools/kitware/cmake
    version: 3.20.0
    location: /opt/cmake-3.20
  - name: compilers/arm/gcc
    version: 10.2.1
    languages: [en-us]
`

func writeIndex(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, IndexFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
