package story

import (
	"fmt"

	"github.com/snappy-loop/soundtrip/internal/models"
)

// FallbackThemes are the affiliate themes attached to template-generated stories.
var FallbackThemes = []string{"町家宿", "夕暮れ散歩ガイド", "和菓子体験"}

// fallbackLyricsComment fills the chorus when the request carries no comment.
const fallbackLyricsComment = "旅の思い出"

// Title returns the templated title used when no generated title is available.
func Title(d models.Destination) string {
	return fmt.Sprintf("%s、%sの%sに", d.City, d.Date, d.TimeOfDay)
}

// Fallback builds a complete story from templates only. It never fails and
// has no time-dependent fields; the same request always yields the same story.
// The returned story has no ID and no AudioURL.
func Fallback(req models.StoryRequest) *models.Story {
	d := req.Destination
	u := req.UserProfile

	commentText := ""
	if req.Comment != "" {
		commentText = fmt.Sprintf("「%s」という思いを胸に、", req.Comment)
	}

	chapters := []models.Chapter{
		{Name: models.ChapterIntro, Text: fmt.Sprintf("%sの空気。%s、%sのあなたは、%s歩きはじめる。", d.City, d.Date, u.AgeRange, commentText)},
		{Name: models.ChapterExploration, Text: fmt.Sprintf("路地に入ると足音が柔らかくなる。%sの光が壁を薄く染める。", d.TimeOfDay)},
		{Name: models.ChapterEncounter, Text: "店先で湯気に誘われ、言葉少なな会釈を交わす。"},
		{Name: models.ChapterExperience, Text: "一椀の温かさが胸に広がり、遠い記憶がそっと起き上がる。"},
		{Name: models.ChapterAfterglow, Text: "帰り道、風が頬を撫でる。今日の静けさが、明日を少しだけ優しくする。"},
	}

	themes := make([]string, len(FallbackThemes))
	copy(themes, FallbackThemes)

	return &models.Story{
		Title:            Title(d),
		Chapters:         chapters,
		SunoLyrics:       fallbackLyrics(req),
		AffiliateContext: models.AffiliateContext{Themes: themes},
	}
}

func fallbackLyrics(req models.StoryRequest) string {
	d := req.Destination
	comment := req.Comment
	if comment == "" {
		comment = fallbackLyricsComment
	}

	return fmt.Sprintf(`[Verse 1]
%sの街角
%sの思い出
%sの光の中
新しい物語が始まる

[Chorus]
旅は続く、心のままに
%s
この瞬間を忘れない
永遠に響く旅の歌

[Verse 2]
知らない路地に迷い込み
小さな灯りに足を止める
ひとりごとが風に溶けて
懐かしい匂いに振り返る

[Bridge]
遠くへ来たはずなのに
心はどこか帰り道
名前も知らない景色が
そっと背中を押してくれる

[Chorus]
旅は続く、心のままに
%sの空の下で
この瞬間を忘れない
永遠に響く旅の歌`,
		d.City, d.Date, d.TimeOfDay, comment, d.City)
}
