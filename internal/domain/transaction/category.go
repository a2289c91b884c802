package transaction

// DefaultCategories 推奨カテゴリ（サーバー側では強制しない）
var DefaultCategories = []string{
	"Food",
	"Transport",
	"Entertainment",
	"Rent",
	"Utilities",
	"Healthcare",
	"Shopping",
	"Salary",
	"Freelance",
	"Investment",
}

