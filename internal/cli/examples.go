// internal/cli/examples.go
package cli

const alignExample = `  # one pair, pretty alignment
  pairdp align -m models/dna-indel.yaml --seq1 ACGTACGT --seq2 ACGACGT --pretty

  # a pair list on 8 workers, JSON with posterior match probabilities
  pairdp align -m models/dna-indel.yaml -p pairs.tsv -t 8 -o json --posterior`

const scoreExample = `  # Forward, Backward and Viterbi log scores as TSV, best first
  pairdp score -m models/dna-indel.yaml -p pairs.tsv --rank

  # log-odds against the null model, cached between runs
  pairdp score -m models/dna-indel.yaml -p pairs.tsv --score-type odds --store .pairdp-cache`

const serveExample = `  pairdp serve -m models/dna-indel.yaml --addr 127.0.0.1:8080 --watch
  curl -s localhost:8080/v1/align -d '{"seq1":"ACGT","seq2":"AGT"}'`
