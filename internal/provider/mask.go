package provider

import "strings"

// MaskCard reduces a card number to its last four digits. Card numbers must
// never reach a log or diagnostic sink in cleartext.
func MaskCard(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) <= 4 {
		return "****"
	}
	return "****" + number[len(number)-4:]
}

// MaskCVV fully masks a CVV.
func MaskCVV(cvv string) string {
	if cvv == "" {
		return ""
	}
	return "***"
}

// cardBIN returns the issuing bank identification number (first six digits).
func cardBIN(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) < 6 {
		return number
	}
	return number[:6]
}

func cardLast4(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}
