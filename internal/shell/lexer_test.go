package shell

import "testing"

func TestLex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "simple command",
			input: "echo hello world",
			want:  []Token{wordTok("echo"), wordTok("hello"), wordTok("world")},
		},
		{
			name:  "empty line",
			input: "",
			want:  []Token{},
		},
		{
			name:  "run of spaces collapses",
			input: "echo   hello",
			want:  []Token{wordTok("echo"), wordTok("hello")},
		},
		{
			name:  "double quoted string preserves whitespace",
			input: `echo "hello   world"`,
			want:  []Token{wordTok("echo"), wordTok("hello   world")},
		},
		{
			name:  "unterminated quote is lenient",
			input: `echo "hello`,
			want:  []Token{wordTok("echo"), wordTok("hello")},
		},
		{
			name:  "empty quoted word",
			input: `echo ""`,
			want:  []Token{wordTok("echo"), wordTok("")},
		},
		{
			name:  "append before write longest match",
			input: "cmd >> out",
			want:  []Token{wordTok("cmd"), opTok(AppendOut), wordTok("out")},
		},
		{
			name:  "operator adjacent to word with no space",
			input: "foo>bar",
			want:  []Token{wordTok("foo"), opTok(WriteOut), wordTok("bar")},
		},
		{
			name:  "pipe and background",
			input: "cmd1 | cmd2 &",
			want: []Token{
				wordTok("cmd1"), opTok(Pipe), wordTok("cmd2"), opTok(Background),
			},
		},
		{
			name:  "read redirection",
			input: "sort < input.txt",
			want:  []Token{wordTok("sort"), opTok(ReadIn), wordTok("input.txt")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lex(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Lex(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Lex(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
