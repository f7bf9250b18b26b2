// internal/service/moderation/rules_default.go

package moderation

import "zonechat/internal/domain/moderation"

// DefaultRuleSet returns the embedded canonical rule set. The source material
// carried two divergent rule sets; this is the stricter union, versioned so
// rule changes are auditable. Deployments can override it with a JSON file
// via MODERATION_RULES_PATH.
func DefaultRuleSet() moderation.RuleSet {
	return moderation.RuleSet{
		Version:     "2024-09",
		MinDigitRun: 7,
		BlockedPhrases: []string{
			// self-disclosure of location (EN)
			"i live in",
			"i live at",
			"my address",
			"my house is",
			"meet me at",
			"meet me in",
			"come to my",
			"street",
			"avenue",
			"apartment",
			// self-disclosure of location (ES)
			"vivo en",
			"mi direccion",
			"mi casa esta",
			"mi casa queda",
			"nos vemos en",
			"te espero en",
			"ven a mi casa",
			"calle",
			"avenida",
			"sector",
			"residencial",
			"apartamento",
			"edificio",
			"esquina de",
			// off-platform contact
			"whatsapp",
			"telegram",
			"instagram",
			"my number is",
			"call me",
			"text me",
			"dm me",
			"add me on",
			"mi numero es",
			"llamame",
			"escribeme al",
			"agregame en",
			"mandame mensaje",
		},
		ExplicitTerms: []string{
			// EN
			"fuck",
			"fucking",
			"shit",
			"bitch",
			"asshole",
			"bastard",
			"dick",
			"pussy",
			"slut",
			"whore",
			"cunt",
			"motherfucker",
			// ES (incl. Dominican slang)
			"puta",
			"puto",
			"cabron",
			"cabrona",
			"mierda",
			"joder",
			"coño",
			"cono",
			"pendejo",
			"pendeja",
			"maldito",
			"maldita",
			"carajo",
			"culo",
			"verga",
			"mamaguevo",
			"mamahuevo",
			"guevo",
			"huevo loco",
			"singar",
			"singa",
			"rapar",
			"cuero",
			"pariguayo",
			"mamañema",
			"mamanema",
			"toto",
			"chapiadora",
			"perra",
			"zorra",
			"hijo de puta",
			"hija de puta",
			"hijueputa",
			"malparido",
			"gonorrea",
			"marica",
			"maricon",
		},
		Homoglyphs: map[string]string{
			"0": "o",
			"1": "i",
			"3": "e",
			"4": "a",
			"5": "s",
			"7": "t",
			"@": "a",
			"$": "s",
			"€": "e",
			"!": "i",
			"|": "l",
		},
		InternalStickerHosts: []string{
			"uploads.zonechat.app",
			"cdn.zonechat.app/uploads",
		},
	}
}
