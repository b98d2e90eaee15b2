package story

import (
	"fmt"
	"strings"

	"github.com/snappy-loop/soundtrip/internal/models"
)

// System prompts sent ahead of the narrative and lyrics prompts.
const (
	NarrativeSystemPrompt = "あなたは旅のストーリーテラーです。"
	LyricsSystemPrompt    = "あなたは作詞家です。"
)

// noComment stands in for an empty comment so the model always has a concrete value.
const noComment = "特になし"

// Prompts holds the two user prompts for one story request.
type Prompts struct {
	Narrative string
	Lyrics    string
}

// BuildPrompts returns the narrative and lyrics prompts for req.
func BuildPrompts(req models.StoryRequest) Prompts {
	return Prompts{
		Narrative: narrativePrompt(req),
		Lyrics:    lyricsPrompt(req),
	}
}

func commentOrSentinel(comment string) string {
	if strings.TrimSpace(comment) == "" {
		return noComment
	}
	return comment
}

func narrativePrompt(req models.StoryRequest) string {
	d := req.Destination
	u := req.UserProfile

	var chapters strings.Builder
	for i, name := range models.ChapterNames {
		sep := ","
		if i == len(models.ChapterNames)-1 {
			sep = ""
		}
		fmt.Fprintf(&chapters, "    {\"name\": \"%s\", \"text\": \"%sのテキスト（80-120文字）\"}%s\n", name, name, sep)
	}

	return fmt.Sprintf(`あなたは旅のラジオ番組のナレーターです。以下の情報をもとに、詩的で情緒的な旅のストーリーを5つのチャプターで作成してください。

【旅の情報】
- 目的地: %s
- 日付: %s
- 時間帯: %s
- 年齢層: %s
- 同行者: %s
- 気分: %s
- 予算: %s
- コメント: %s

【出力形式】
以下のJSON形式で出力してください：
{
  "title": "タイトル（20文字以内）",
  "chapters": [
%s  ]
}

【注意事項】
- チャプターは必ず5つ、上記の順番と名前のまま
- 各チャプターは80-120文字
- 文体は詩的で情緒的に
- 五感を刺激する表現を使う
- ユーザーのコメントを自然に反映させる
- JSON形式のみを出力し、他の説明は不要`,
		d.City, d.Date, d.TimeOfDay,
		u.AgeRange, u.Companions, strings.Join(u.Mood, ", "), u.Budget,
		commentOrSentinel(req.Comment),
		chapters.String())
}

func lyricsPrompt(req models.StoryRequest) string {
	d := req.Destination

	return fmt.Sprintf(`あなたは作詞家です。以下の旅の情報をもとに、Sunoで使える日本語の歌詞を作成してください。

【旅の情報】
- 目的地: %s
- 日付: %s
- 時間帯: %s
- 気分: %s
- コメント: %s

【出力形式】
[Verse 1]
（4行の歌詞）

[Chorus]
（4行の歌詞、コメントを自然に組み込む）

[Verse 2]
（4行の歌詞）

[Bridge]
（4行の歌詞）

[Chorus]
（4行の歌詞）

【注意事項】
- 旅の情緒を大切に
- リズム感のある言葉選び
- ユーザーのコメントを最初のコーラスに組み込む
- 歌詞のみを出力し、他の説明は不要`,
		d.City, d.Date, d.TimeOfDay,
		strings.Join(req.UserProfile.Mood, ", "),
		commentOrSentinel(req.Comment))
}
