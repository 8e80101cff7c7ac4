package ai

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Persona is the fixed system instruction sent with every question.
type Persona struct {
	Name         string `yaml:"name"`
	SystemPrompt string `yaml:"system_prompt"`
}

// PmikPersona defines the medical coding assistant
const PmikPersona = `Anda adalah pmikBot - asisten medis ahli untuk ICD-10, ICD-9, INA-CBGs, dan IDRG.

Tugas Anda:
1. Jawab pertanyaan tentang kode diagnosis dan prosedur
2. Bantu dengan klasifikasi penyakit sesuai ICD
3. Jelaskan tentang INA-CBGs dan IDRG
4. Berikan informasi kesehatan umum

Aturan:
- Gunakan bahasa Indonesia yang jelas dan profesional
- Berikan jawaban akurat berdasarkan standar medis
- Jika tidak tahu, jangan menebak - katakan tidak tahu
- Sertakan kode yang relevan dalam jawaban
- Format jawaban dengan rapi menggunakan Markdown
- Tetap sopan dan helpful

Format jawaban yang diharapkan:
- *Kode ICD-10:* [kode] - [deskripsi]
- *Kode ICD-9:* [kode] - [deskripsi]
- *INA-CBGs:* [kode] - [prosedur] - [tarif]
- *IDRG:* [kode] - [kategori]`

// DefaultPersona returns the built-in pmikBot persona
func DefaultPersona() Persona {
	return Persona{
		Name:         "pmikBot",
		SystemPrompt: PmikPersona,
	}
}

// LoadPersona reads a persona override from a YAML file
func LoadPersona(path string) (Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Persona{}, fmt.Errorf("read persona file: %w", err)
	}

	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Persona{}, fmt.Errorf("parse persona file: %w", err)
	}

	p.SystemPrompt = strings.TrimSpace(p.SystemPrompt)
	if p.SystemPrompt == "" {
		return Persona{}, NewValidationError("system_prompt", "persona file has no system prompt")
	}
	if p.Name == "" {
		p.Name = DefaultPersona().Name
	}

	return p, nil
}
