package answer

// Localized user-facing summaries for the degraded answer paths.

// FallbackSummary is used when the model produced no usable summary.
func FallbackSummary(lang string) string {
	switch NormalizeLang(lang) {
	case LangPersian:
		return "متاسفانه پاسخ معتبر تولید نشد."
	case LangEnglish:
		return "A valid response could not be produced."
	default:
		return "Es konnte keine gueltige Antwort erzeugt werden."
	}
}

// EmptyInputSummary is returned for blank problem text.
func EmptyInputSummary(lang string) string {
	switch NormalizeLang(lang) {
	case LangPersian:
		return "متن مسئله دریافت نشد."
	case LangEnglish:
		return "No problem text received."
	default:
		return "Kein Problemtext erhalten."
	}
}

// LanguageMismatchSummary is returned when the repair attempt also failed
// the language check.
func LanguageMismatchSummary(lang string) string {
	switch NormalizeLang(lang) {
	case LangPersian:
		return "عدم تطابق زبان پاسخ. لطفا دوباره تلاش کنید."
	case LangEnglish:
		return "Language mismatch: the response was not in English."
	default:
		return "Sprachfehler: Die Antwort war nicht auf Deutsch."
	}
}

// QuotaSummary is returned when the remote endpoint rejected for quota.
func QuotaSummary(lang string) string {
	switch NormalizeLang(lang) {
	case LangPersian:
		return "سهمیه تمام شده است. لطفا بعدا دوباره تلاش کنید."
	case LangEnglish:
		return "Quota exceeded. Please try again later."
	default:
		return "Kontingent aufgebraucht. Bitte spaeter erneut versuchen."
	}
}

// ErrorSummary is returned for any other failure.
func ErrorSummary(lang string) string {
	switch NormalizeLang(lang) {
	case LangPersian:
		return "خطایی رخ داد. لطفا دوباره تلاش کنید."
	case LangEnglish:
		return "An error occurred. Please try again."
	default:
		return "Ein Fehler ist aufgetreten. Bitte erneut versuchen."
	}
}

// OverLengthSummary is returned when the problem text exceeds the input
// token budget.
func OverLengthSummary(lang string) string {
	switch NormalizeLang(lang) {
	case LangPersian:
		return "متن مسئله بیش از حد طولانی است. لطفا آن را کوتاه کنید."
	case LangEnglish:
		return "The problem text is too long. Please shorten it."
	default:
		return "Der Problemtext ist zu lang. Bitte kuerzen."
	}
}
