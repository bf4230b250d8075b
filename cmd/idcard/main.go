package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mylxsw/asteria/log"
	"github.com/pkg/errors"

	"github.com/youruser/idcardapp/internal/cards"
	"github.com/youruser/idcardapp/internal/config"
	"github.com/youruser/idcardapp/internal/render"
	"github.com/youruser/idcardapp/internal/sheet"
	"github.com/youruser/idcardapp/internal/template"
	"github.com/youruser/idcardapp/internal/util"
)

const usage = `usage:
  idcard card  -template t.json -student s.json [-out dir]
  idcard sheet -template t.json -students students.csv [-class 5] [-out dir]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "card":
		err = runCard(os.Args[2:])
	case "sheet":
		err = runSheet(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Errorf("%s failed: %v", os.Args[1], err)
		os.Exit(1)
	}
}

type common struct {
	conf     string
	template string
	out      string
}

func (c *common) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.conf, "conf", "", "YAML config file")
	fs.StringVar(&c.template, "template", "", "template JSON file")
	fs.StringVar(&c.out, "out", "out", "output directory")
}

func (c *common) setup() (*render.Renderer, *template.Spec, error) {
	conf, err := config.Load(c.conf)
	if err != nil {
		return nil, nil, err
	}
	spec, err := template.Load(c.template)
	if err != nil {
		return nil, nil, err
	}
	if err := util.EnsureDir(c.out); err != nil {
		return nil, nil, err
	}
	return render.NewFromConfig(conf), spec, nil
}

func runCard(args []string) error {
	var c common
	var studentPath string
	fs := flag.NewFlagSet("card", flag.ExitOnError)
	c.bind(fs)
	fs.StringVar(&studentPath, "student", "", "student JSON file (object)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	renderer, spec, err := c.setup()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(studentPath)
	if err != nil {
		return errors.Wrapf(err, "read %s", studentPath)
	}
	var s cards.Student
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrapf(err, "parse %s", studentPath)
	}

	card, err := renderer.RenderStudentCard(context.Background(), spec, s)
	if err != nil {
		return err
	}

	base := filepath.Join(c.out, fileName(s))
	if err := util.WriteFile(base+".jpg", card.JPEG); err != nil {
		return err
	}
	if err := util.WriteFile(base+".pdf", card.PDF); err != nil {
		return err
	}
	log.Infof("wrote %s.jpg and %s.pdf", base, base)
	return nil
}

func runSheet(args []string) error {
	var c common
	var studentsPath, classes string
	fs := flag.NewFlagSet("sheet", flag.ExitOnError)
	c.bind(fs)
	fs.StringVar(&studentsPath, "students", "", "students CSV or JSON file")
	fs.StringVar(&classes, "class", "", "comma separated classes to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	renderer, spec, err := c.setup()
	if err != nil {
		return err
	}

	var students []cards.Student
	if strings.EqualFold(filepath.Ext(studentsPath), ".json") {
		students, err = cards.LoadStudentsJSON(studentsPath)
	} else {
		students, err = cards.LoadStudentsCSV(studentsPath)
	}
	if err != nil {
		return err
	}

	opt := cards.FilterOptions{}
	if classes != "" {
		opt.Classes = strings.Split(classes, ",")
	}
	students, rowErrs := cards.Validate(cards.Filter(students, opt), spec)
	for _, re := range rowErrs {
		log.Warningf("skipping %v", re)
	}
	if len(students) == 0 {
		return errors.New("no printable students")
	}

	doc, err := renderer.RenderStudentSheet(context.Background(), spec, students)
	if err != nil {
		return err
	}

	name := spec.ID
	if name == "" {
		name = "sheet"
	}
	base := filepath.Join(c.out, name)
	if err := util.WriteFile(base+".pdf", doc); err != nil {
		return err
	}

	names := make([]string, len(students))
	for i, s := range students {
		names[i] = s.Name
	}
	summary := sheet.ExportText(spec.SchoolName, sheet.NewGrid(spec), names)
	if err := util.WriteFile(base+".txt", []byte(summary+"\n")); err != nil {
		return err
	}
	log.Infof("wrote %d cards to %s.pdf", len(students), base)
	return nil
}

func fileName(s cards.Student) string {
	if s.ID != "" {
		return filepath.Base(s.ID)
	}
	return s.QRID()
}
