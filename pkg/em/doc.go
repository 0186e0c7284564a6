// Package em provides an Expectation-Maximization framework for models of paired tumor/normal sequencing data.
//
// A concrete model plugs three components into the framework: the latent variables updated by the E-step, the model
// parameters updated by the M-step, and the likelihood used to check convergence. The Trainer runs the EM loop over
// those components until the relative change of the log-likelihood falls below a stop value, or until a maximum number
// of iterations is reached.
//
// The Model wraps the trainer with the lifecycle of a whole analysis: reading the priors, reading and preprocessing the
// data, running one or several restarts from different initial parameters, and writing the parameters of the best
// restart.
//
// Training progress is reported to observers. Observers can log the running information, measure the duration of
// each stage, draw the EM loop or display a progress bar.
package em
