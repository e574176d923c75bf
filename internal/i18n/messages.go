package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys for strings produced by the API.
const (
	MsgNotFound       = "error.not_found"
	MsgBadParam       = "error.bad_param"
	MsgInternal       = "error.internal"
	MsgBadBody        = "error.bad_body"
	MsgTeamTooLarge   = "error.team_too_large"
	MsgUnknownDigimon = "error.unknown_digimon"
	MsgHostForbidden  = "error.host_forbidden"
	MsgUpstream       = "error.upstream"
	MsgNoPath         = "error.no_path"
)

var messages = buildCatalog()

var entries = map[string]map[language.Tag]string{
	MsgNotFound:       {language.English: "not found", language.Japanese: "見つかりません"},
	MsgBadParam:       {language.English: "invalid query parameter", language.Japanese: "クエリパラメータが不正です"},
	MsgInternal:       {language.English: "internal error", language.Japanese: "内部エラー"},
	MsgBadBody:        {language.English: "invalid request body", language.Japanese: "リクエスト本文が不正です"},
	MsgTeamTooLarge:   {language.English: "team has too many members", language.Japanese: "チームのメンバーが多すぎます"},
	MsgUnknownDigimon: {language.English: "unknown digimon", language.Japanese: "不明なデジモンです"},
	MsgHostForbidden:  {language.English: "image host not allowed", language.Japanese: "許可されていない画像ホストです"},
	MsgUpstream:       {language.English: "image unavailable", language.Japanese: "画像を取得できません"},
	MsgNoPath:         {language.English: "no evolution path", language.Japanese: "進化ルートがありません"},

	"stage.in-training-i":  {language.English: "In-Training I", language.Japanese: "幼年期I"},
	"stage.in-training-ii": {language.English: "In-Training II", language.Japanese: "幼年期II"},
	"stage.rookie":         {language.English: "Rookie", language.Japanese: "成長期"},
	"stage.champion":       {language.English: "Champion", language.Japanese: "成熟期"},
	"stage.ultimate":       {language.English: "Ultimate", language.Japanese: "完全体"},
	"stage.mega":           {language.English: "Mega", language.Japanese: "究極体"},
	"stage.ultra":          {language.English: "Ultra", language.Japanese: "超究極体"},
	"stage.armor":          {language.English: "Armor", language.Japanese: "アーマー体"},

	"attribute.vaccine":  {language.English: "Vaccine", language.Japanese: "ワクチン"},
	"attribute.data":     {language.English: "Data", language.Japanese: "データ"},
	"attribute.virus":    {language.English: "Virus", language.Japanese: "ウィルス"},
	"attribute.free":     {language.English: "Free", language.Japanese: "フリー"},
	"attribute.variable": {language.English: "Variable", language.Japanese: "ヴァリアブル"},
	"attribute.no-data":  {language.English: "No Data", language.Japanese: "ノーデータ"},
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, byTag := range entries {
		for tag, msg := range byTag {
			if err := b.SetString(tag, key, msg); err != nil {
				panic("i18n: " + err.Error())
			}
		}
	}
	return b
}
