package bot

import "strings"

const (
	// FallbackGreeting replaces a mention that carries no question.
	FallbackGreeting = "Halo! Ada yang bisa saya bantu?"

	// ErrorReplyPrefix is the localized prefix of router-level error replies.
	ErrorReplyPrefix = "Maaf, terjadi error"

	handlePlaceholder = "{handle}"
)

// Static texts use Telegram's legacy Markdown: *bold* and `code`.
var usageLines = []string{
	"🤖 *Cara menggunakan /pmik:*",
	"",
	"`/pmik [pertanyaan]`",
	"",
	"*Contoh:*",
	"`/pmik apa kode ICD-10 untuk hipertensi?`",
	"`/pmik jelaskan tentang INA-CBGs`",
	"`/pmik kode ICD-9 untuk appendicitis`",
	"",
	"Saya siap membantu dengan ICD-10, ICD-9, INA-CBGs, IDRG, dan informasi kesehatan lainnya! 😊",
}

var welcomeLines = []string{
	"🤖 *Selamat datang di pmikBot!*",
	"",
	"Saya adalah asisten medis AI yang siap membantu dengan:",
	"• 🏥 Kode ICD-10 & ICD-9",
	"• 💰 INA-CBGs & IDRG",
	"• 📊 Informasi kesehatan umum",
	"",
	"*Cara pakai:*",
	"• *Private Chat:* Langsung tanya saja",
	"• *Di grup:*",
	"  - `/pmik [pertanyaan]`",
	"  - Atau mention `{handle} [pertanyaan]`",
	"",
	"*Contoh:*",
	"`/pmik apa ICD-10 untuk diabetes?`",
	"`/pmik jelaskan tentang INA-CBGs`",
	"`{handle} kode ICD-9 untuk pneumonia`",
	"",
	"Semoga membantu! 😊",
}

var helpLines = []string{
	"📖 *Bantuan pmikBot*",
	"",
	"*Commands:*",
	"/start - Memulai bot",
	"/help - Menampilkan bantuan ini",
	"/pmik - Tanya pertanyaan medis",
	"",
	"*Cara penggunaan:*",
	"• *Private Chat:* Langsung ketik pertanyaan",
	"• *Grup:*",
	"  - `/pmik [pertanyaan]`",
	"  - Atau mention `{handle} [pertanyaan]`",
	"",
	"*Contoh:*",
	"`/pmik ICD-10 untuk hipertensi`",
	"`/pmik kode INA-CBGs untuk USG`",
	"`/pmik perbedaan ICD-9 dan ICD-10`",
	"",
	"*Fitur:*",
	"• Kode diagnosis & prosedur",
	"• Informasi tarif INA-CBGs",
	"• Klasifikasi penyakit",
	"• Edukasi kesehatan",
}

// staticTexts holds the rendered help texts of one router.
type staticTexts struct {
	usage   string
	welcome string
	help    string
}

func renderTexts(handle, format string) staticTexts {
	render := func(lines []string) string {
		s := strings.ReplaceAll(strings.Join(lines, "\n"), handlePlaceholder, handle)
		if format == FormatPlain {
			s = stripMarkdown(s)
		}
		return s
	}
	return staticTexts{
		usage:   render(usageLines),
		welcome: render(welcomeLines),
		help:    render(helpLines),
	}
}
