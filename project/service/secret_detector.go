package service

// YubiKey OTP は modhex 16文字のアルファベットで 44 文字固定です
const (
	secretTokenLength = 44
	modhexAlphabet    = "cbdefghijklnrtuv"
)

var modhexSet = func() [256]bool {
	var set [256]bool
	for i := 0; i < len(modhexAlphabet); i++ {
		set[modhexAlphabet[i]] = true
	}
	return set
}()

// LooksLikeSecret は text がワンタイムパスワードのトークンに見えるかを判定します
// 大文字小文字の正規化はしません
func LooksLikeSecret(text string) bool {
	if len(text) != secretTokenLength {
		return false
	}
	for i := 0; i < len(text); i++ {
		if !modhexSet[text[i]] {
			return false
		}
	}
	return true
}
