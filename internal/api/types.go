package api

// Answers holds the four answer choices of a question.
type Answers struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Get returns the answer text for a choice letter.
func (a Answers) Get(letter string) string {
	switch letter {
	case "a", "A":
		return a.A
	case "b", "B":
		return a.B
	case "c", "C":
		return a.C
	case "d", "D":
		return a.D
	}
	return ""
}

// AnswerLetters lists the choices in display order.
var AnswerLetters = []string{"a", "b", "c", "d"}

// Question is a single past exam question.
type Question struct {
	ID              string   `json:"id"`
	MainQuestion    string   `json:"mainQuestion"`
	Continuation    string   `json:"continuation"`
	QuestionOptions []string `json:"questionOptions"`
	Answers         Answers  `json:"answers"`
	CorrectAnswer   string   `json:"correctAnswer"`
	Exam            string   `json:"exam"`
	Subject         string   `json:"subject"`
	Year            int      `json:"year"`
}

// Metadata lists the facets available for filtering.
type Metadata struct {
	Exams    []string `json:"exams"`
	Subjects []string `json:"subjects"`
	Years    []string `json:"years"`
}

// User is the account returned by the login endpoint.
type User struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// LoginResponse carries the tokens issued on login.
type LoginResponse struct {
	RefreshToken string `json:"refreshToken"`
	AccessToken  string `json:"accessToken"`
	User         User   `json:"user"`
}
