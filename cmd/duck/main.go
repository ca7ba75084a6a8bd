// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/duck/cpu"
	"github.com/ezrec/duck/emulator"
	"github.com/ezrec/duck/io"
	"github.com/ezrec/duck/translate"
)

func main() {
	var compile string
	var load string
	var save bool
	var object string
	var input string
	var output string
	var verbose bool
	var step bool
	var limit int
	var lang string

	flag.StringVar(&compile, "c", "", ".dasm file to assemble")
	flag.StringVar(&load, "l", "", ".obj file to load")
	flag.BoolVar(&save, "s", false, "Save object image, do not execute")
	flag.StringVar(&object, "o", "-", "Object image output")
	flag.StringVar(&input, "i", "-", "Console input")
	flag.StringVar(&output, "p", "-", "Console output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&step, "step", false, "Single step, press enter to continue")
	flag.IntVar(&limit, "limit", 0, "Stop after this many steps")
	flag.StringVar(&lang, "lang", "", "Message language")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		translate.Use(lang)
	}

	if len(compile) != 0 && len(load) != 0 {
		log.Fatalf("%v: -c and -l are exclusive", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	img := &io.Image{}

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		if verbose {
			log.Printf("%v:\n%v", compile, prog)
		}

		emu.Program = prog
		img.Data = prog.Binary()
	}

	// Load an object image.
	if len(load) != 0 {
		inf, err := os.Open(load)
		if err != nil {
			log.Fatalf("%v: %v", load, err)
		}
		defer inf.Close()

		_, err = img.ReadFrom(inf)
		if err != nil {
			log.Fatalf("%v: %v", load, err)
		}

		prog := &cpu.Program{}
		for addr, word := range img.Data {
			prog.Lines = append(prog.Lines, cpu.Line{
				Addr:  addr,
				Word:  word,
				Words: []string{cpu.Decode(word).String()},
			})
		}
		emu.Program = prog
	}

	if save {
		ouf := os.Stdout
		if object != "-" {
			var err error
			ouf, err = os.Create(object)
			if err != nil {
				log.Fatalf("%v: %v", object, err)
			}
			defer ouf.Close()
		}

		_, err := img.WriteTo(ouf)
		if err != nil {
			log.Fatalf("%v: %v", object, err)
		}
		return
	}

	// Single step prompts and console input share one buffered stdin.
	stdin := bufio.NewReader(os.Stdin)

	if input == "-" {
		emu.Console.Input = stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Console.Input = inf
		emu.Console.Prompt = ""
	}

	if output == "-" {
		emu.Console.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Console.Output = ouf
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	emu.Cpu.StepLimit = limit

	if step {
		emu.Cpu.Pause = func(tick int) {
			dbg := emu.Program.Debug(emu.Pc())
			if dbg.Line != nil {
				fmt.Fprintf(os.Stderr, "%d: %04d: %v ", tick, emu.Pc(), cpu.Decode(dbg.Word))
			}
			_, _ = stdin.ReadString('\n')
		}
	}

	halt, err := emu.Run(step)
	if verbose {
		log.Printf("%v after %v ticks\n%v", halt, emu.Ticks(), emu.Cpu)
	}
	if err != nil {
		log.Fatal(err)
	}
}
