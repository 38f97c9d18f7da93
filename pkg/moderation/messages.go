package moderation

// Messages maps (kind, code) pairs to user-facing strings. Missing entries
// fall back to the kind-independent default for the code.
type Messages map[Kind]map[Code]string

var defaultMessages = map[Code]string{
	CodeRequired:   "Please enter some text before posting.",
	CodeTooShort:   "That's a bit short. Add some more detail.",
	CodeTooLong:    "That's too long. Try trimming it down.",
	CodeLowQuality: "Please write something meaningful.",
}

var kindMessages = Messages{
	KindAnswer: {
		CodeRequired: "Please write an answer before posting.",
		CodeTooShort: "Answers need a little more detail.",
		CodeTooLong:  "Answers are limited to 20,000 characters.",
	},
	KindComment: {
		CodeRequired: "Please write a comment before posting.",
		CodeTooLong:  "Comments are limited to 2,000 characters.",
	},
	KindReply: {
		CodeRequired: "Please write a reply before posting.",
		CodeTooLong:  "Replies are limited to 2,000 characters.",
	},
}

// MessageFor resolves the user-facing string for a validation code.
func MessageFor(kind Kind, code Code) string {
	if byCode, ok := kindMessages[kind]; ok {
		if msg, ok := byCode[code]; ok {
			return msg
		}
	}
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return "This can't be posted right now."
}
