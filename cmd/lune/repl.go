// This file is part of lune - https://github.com/db47h/lune
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/db47h/lune/lang/lune"
	"github.com/db47h/lune/vm"
)

// readLine reads one line of input, either from a plain buffered reader or,
// in raw mode, byte at a time with manual echo and backspace handling. This
// mirrors the teacher's manual echo/erase handling for raw-tty input
// (cmd/retro/main.go's port1Handler/port2Handler, which intercept backspace
// and CTRL-D themselves once the terminal is taken out of canonical mode).
// Returns the line with its trailing newline stripped, or io.EOF once stdin
// is closed, CTRL-D is pressed at an empty line, or CTRL-C is pressed.
func readLine(r *bufio.Reader, w io.Writer, raw bool) (string, error) {
	if !raw {
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\r', '\n':
			io.WriteString(w, "\r\n")
			return string(buf), nil
		case 4: // CTRL-D
			if len(buf) == 0 {
				return "", io.EOF
			}
		case 3: // CTRL-C
			return "", io.EOF
		case 127, 8: // backspace / delete
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				w.Write([]byte{8, ' ', 8})
			}
		default:
			buf = append(buf, b)
			w.Write([]byte{b})
		}
	}
}

// replLoop runs an interactive read-eval-print loop on i: each line is
// compiled and executed as its own module, the same loadstring/dostring
// pair the embedding API exposes, tied to an interactive front end the way
// cmd/retro ties vm.Run to a terminal. Each line is first compiled as
// "return (<line>)" so a bare expression prints its value without typing
// "return"; a line that does not compile that way is compiled as written.
func replLoop(i *vm.Instance, out io.Writer) error {
	teardown, rawErr := setRawIO()
	raw := rawErr == nil
	if raw {
		defer teardown()
	}

	if cols, _ := consoleSize(os.Stdin); cols > 0 {
		fmt.Fprintln(out, strings.Repeat("-", cols))
	}
	fmt.Fprintln(out, "lune interactive mode, CTRL-D to quit")

	in := bufio.NewReader(os.Stdin)
	for n := 1; ; n++ {
		fmt.Fprintf(out, "[%d]> ", n)
		line, err := readLine(in, out, raw)
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		evalLine(i, line, out)
	}
}

// evalLine compiles and runs one REPL line, printing its result or error
// without aborting the loop.
func evalLine(i *vm.Instance, line string, out io.Writer) {
	modName := "=repl"
	chunk, err := lune.LoadString(i, []byte("return ("+line+")"), modName)
	if err != nil {
		chunk, err = lune.LoadString(i, []byte(line), modName)
	}
	if err != nil {
		fmt.Fprintf(out, "%v\n", err)
		return
	}
	nret, err := i.Exec(chunk, 0)
	i.ResumeCollect(chunk)
	if err != nil {
		fmt.Fprintf(out, "%v\n", err)
		return
	}
	for k := 0; k < nret; k++ {
		fmt.Fprintf(out, "=> %s\n", formatValue(i, i.At(i.Depth()-nret+k)))
	}
	for k := 0; k < nret; k++ {
		i.Pop()
	}
}
