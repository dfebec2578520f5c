package sbom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/utils"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    SBOMFormat
		wantErr bool
	}{
		{"cyclonedx", CycloneDX, false},
		{"CycloneDX", CycloneDX, false},
		{"cdx", CycloneDX, false},
		{"", CycloneDX, false},
		{" spdx ", SPDX, false},
		{"swid", CycloneDX, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSBOMFormat_Names(t *testing.T) {
	assert.Equal(t, "CycloneDX", CycloneDX.String())
	assert.Equal(t, "SPDX", SPDX.String())
	assert.Equal(t, "Unknown", SBOMFormat(9).String())

	assert.Equal(t, "xbdepends.cdx.json", CycloneDX.FileName())
	assert.Equal(t, "xbdepends.spdx.json", SPDX.FileName())

	text, err := SPDX.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "SPDX", string(text))
}

func TestNewSBOM(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cdx := NewSBOM(CycloneDX, now)
	assert.Equal(t, "1.5", cdx.Version)
	assert.Equal(t, utils.ToolName, cdx.Metadata.Tool.Name)
	assert.Equal(t, utils.Version, cdx.Metadata.Tool.Version)
	assert.Equal(t, "2024-03-01T12:00:00Z", cdx.Metadata.Timestamp)
	assert.Equal(t, now, cdx.GeneratedAt)
	assert.Empty(t, cdx.Components)

	assert.Equal(t, "2.3", NewSBOM(SPDX, now).Version)
}

func TestComponent_Helpers(t *testing.T) {
	comp := NewComponent(ComponentTypeLibrary, bomRef("module", "engine.dll"), "Engine.dll")

	comp.AddDependency("a")
	comp.AddDependency("b")
	comp.AddDependency("a")
	assert.Equal(t, []string{"a", "b"}, comp.Dependencies)

	comp.AddProperty(PropertyCategory, "User")
	assert.Equal(t, "User", comp.Property(PropertyCategory))
	assert.Equal(t, "", comp.Property(PropertyRule))

	comp.AddHash("SHA-256", "abc")
	assert.Equal(t, map[string]string{"SHA-256": "abc"}, comp.Hashes)
}

func TestBOMRef_CaseInsensitive(t *testing.T) {
	assert.Equal(t, bomRef("module", "KERNEL32.dll"), bomRef("module", "kernel32.dll"))
	assert.NotEqual(t, bomRef("module", "kernel32.dll"), bomRef("image", "kernel32.dll"))
	assert.Regexp(t, `^module-[0-9a-f]{16}$`, bomRef("module", "kernel32.dll"))
}

func TestSBOM_Find(t *testing.T) {
	s := NewSBOM(CycloneDX, time.Now())
	s.AddComponent(NewComponent(ComponentTypeApplication, "image-1", "game.exe"))
	s.AddComponent(NewComponent(ComponentTypeOperatingSystem, "module-1", "KERNEL32.dll"))
	s.AddComponent(NewComponent(ComponentTypeOperatingSystem, "module-2", "ntdll.dll"))

	require.NotNil(t, s.FindComponent("module-1"))
	assert.Equal(t, "KERNEL32.dll", s.FindComponent("module-1").Name)
	assert.Nil(t, s.FindComponent("missing"))

	require.NotNil(t, s.FindComponentByName("kernel32.dll"))
	assert.Equal(t, "module-1", s.FindComponentByName("kernel32.dll").BOMRef)
	assert.Nil(t, s.FindComponentByName("user32.dll"))

	assert.Len(t, s.FindComponentsByType(ComponentTypeOperatingSystem), 2)
}

func TestSBOM_Validate(t *testing.T) {
	valid := func() *SBOM {
		s := NewSBOM(CycloneDX, time.Now())
		app := NewComponent(ComponentTypeApplication, "image-1", "game.exe")
		app.AddDependency("module-1")
		s.AddComponent(app)
		s.AddComponent(NewComponent(ComponentTypeOperatingSystem, "module-1", "kernel32.dll"))
		return s
	}

	t.Run("valid", func(t *testing.T) {
		result := valid().Validate()
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("duplicate reference", func(t *testing.T) {
		s := valid()
		s.AddComponent(NewComponent(ComponentTypeLibrary, "module-1", "other.dll"))
		result := s.Validate()
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "Duplicate BOM reference: module-1")
	})

	t.Run("unknown dependency", func(t *testing.T) {
		s := valid()
		s.Components[0].AddDependency("module-9")
		result := s.Validate()
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "Component game.exe: unknown dependency module-9")
	})

	t.Run("missing fields", func(t *testing.T) {
		s := valid()
		s.Version = ""
		s.AddComponent(Component{BOMRef: "x"})
		result := s.Validate()
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "SBOM version is required")
		assert.Contains(t, result.Errors, "Component 2: name is required")
		assert.Contains(t, result.Errors, "Component 2: type is required")
	})
}
